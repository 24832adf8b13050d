package dto

import "github.com/zullum/comfyui-wan/domain"

type GenerateRequest struct {
	Image                   string   `json:"image" binding:"required"`
	Workflow                string   `json:"workflow"`
	PositivePrompt          *string  `json:"positive_prompt"`
	NegativePrompt          *string  `json:"negative_prompt"`
	Width                   *int     `json:"width"`
	Height                  *int     `json:"height"`
	NumFrames               *int     `json:"num_frames"`
	Steps                   *int     `json:"steps"`
	CfgScale                *float64 `json:"cfg_scale"`
	CfgImg                  *float64 `json:"cfg_img"`
	Seed                    *int64   `json:"seed"`
	LoraStrength            *float64 `json:"lora_strength"`
	FrameRate               *int     `json:"frame_rate"`
	InterpolationMultiplier *int     `json:"interpolation_multiplier"`
	FinalFrameRate          *int     `json:"final_frame_rate"`
	ModelName               *string  `json:"model_name"`
}

// ToParams overlays the request's explicit fields on the default parameter
// set.
func (r GenerateRequest) ToParams() domain.GenerationParams {
	params := domain.DefaultGenerationParams()
	params.Image = r.Image

	if r.PositivePrompt != nil {
		params.PositivePrompt = *r.PositivePrompt
	}
	if r.NegativePrompt != nil {
		params.NegativePrompt = *r.NegativePrompt
	}
	if r.Width != nil {
		params.Width = *r.Width
	}
	if r.Height != nil {
		params.Height = *r.Height
	}
	if r.NumFrames != nil {
		params.NumFrames = *r.NumFrames
	}
	if r.Steps != nil {
		params.Steps = *r.Steps
	}
	if r.CfgScale != nil {
		params.CfgScale = *r.CfgScale
	}
	if r.CfgImg != nil {
		params.CfgImg = *r.CfgImg
	}
	if r.Seed != nil {
		params.Seed = r.Seed
	}
	if r.LoraStrength != nil {
		params.LoraStrength = *r.LoraStrength
	}
	if r.FrameRate != nil {
		params.FrameRate = *r.FrameRate
	}
	if r.InterpolationMultiplier != nil {
		params.InterpolationMultiplier = *r.InterpolationMultiplier
	}
	if r.FinalFrameRate != nil {
		params.FinalFrameRate = *r.FinalFrameRate
	}
	if r.ModelName != nil {
		params.ModelName = *r.ModelName
	}

	return params
}
