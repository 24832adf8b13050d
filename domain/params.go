package domain

// DefaultNegativePrompt is the template's stock negative prompt. Its leading
// characters double as the marker used to recognize the negative-prompt node
// inside a template.
const DefaultNegativePrompt = "色调艳丽，过曝，静态，细节模糊不清，字幕，风格，作品，画作，画面，静止，整体发灰，最差质量，低质量，JPEG压缩残留，丑陋的，残缺的，多余的手指，画得不好的手部，画得不好的脸部，畸形的，毁容的，形态畸形的肢体，手指融合，静止不动的画面，杂乱的背景，三条腿，背景人很多，倒着走"

const DefaultModelName = "wan2.1_i2v_720p_14B_bf16.safetensors"

// GenerationParams is a fully defaulted generation request, validated before
// it ever reaches the parameter patcher.
type GenerationParams struct {
	Image                   string
	ImageFilename           string
	PositivePrompt          string
	NegativePrompt          string
	Width                   int
	Height                  int
	NumFrames               int
	Steps                   int
	CfgScale                float64
	CfgImg                  float64
	Seed                    *int64
	LoraStrength            float64
	FrameRate               int
	InterpolationMultiplier int
	FinalFrameRate          int
	ModelName               string
}

// DefaultGenerationParams returns the parameter set used when a request
// omits optional fields.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		PositivePrompt:          "A beautiful woman walking towards the camera",
		NegativePrompt:          DefaultNegativePrompt,
		Width:                   720,
		Height:                  1280,
		NumFrames:               81,
		Steps:                   5,
		CfgScale:                1.0,
		CfgImg:                  8.0,
		LoraStrength:            0.7,
		FrameRate:               16,
		InterpolationMultiplier: 5,
		FinalFrameRate:          60,
		ModelName:               DefaultModelName,
	}
}

// Validate checks required fields and normalizes the ones with correction
// rules: dimensions must be multiples of 8 and the frame count must be odd
// (even values are incremented, never rejected).
func (p *GenerationParams) Validate() error {
	if p.Image == "" {
		return &ValidationError{Message: "missing required parameter: 'image'"}
	}
	if p.Width%8 != 0 || p.Height%8 != 0 {
		return &ValidationError{Message: "width and height must be multiples of 8"}
	}
	if p.NumFrames%2 == 0 {
		p.NumFrames++
	}
	return nil
}
