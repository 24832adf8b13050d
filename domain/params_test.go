package domain

import (
	"errors"
	"testing"
)

func TestValidateRequiresImage(t *testing.T) {
	params := DefaultGenerationParams()

	err := params.Validate()

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatal("Expected ValidationError for missing image, got:", err)
	}
}

func TestValidateDimensions(t *testing.T) {
	cases := []struct {
		width  int
		height int
		valid  bool
	}{
		{721, 1280, false},
		{720, 1281, false},
		{720, 1280, true},
	}

	for _, tc := range cases {
		params := DefaultGenerationParams()
		params.Image = "https://example.com/input.jpg"
		params.Width = tc.width
		params.Height = tc.height

		err := params.Validate()
		if tc.valid && err != nil {
			t.Fatalf("Expected %dx%d to be accepted, got: %v", tc.width, tc.height, err)
		}
		if !tc.valid && err == nil {
			t.Fatalf("Expected %dx%d to be rejected", tc.width, tc.height)
		}
		if tc.valid && (params.Width != tc.width || params.Height != tc.height) {
			t.Fatalf("Expected accepted dimensions to stay unchanged, got %dx%d", params.Width, params.Height)
		}
	}
}

func TestValidateNormalizesFrameCount(t *testing.T) {
	params := DefaultGenerationParams()
	params.Image = "https://example.com/input.jpg"
	params.NumFrames = 80

	if err := params.Validate(); err != nil {
		t.Fatal("Expected even frame count to be corrected, got:", err)
	}
	if params.NumFrames != 81 {
		t.Fatalf("Expected 80 frames to normalize to 81, got %d", params.NumFrames)
	}

	params.NumFrames = 81
	if err := params.Validate(); err != nil {
		t.Fatal("Unexpected error:", err)
	}
	if params.NumFrames != 81 {
		t.Fatalf("Expected 81 frames to stay 81, got %d", params.NumFrames)
	}
}
