package recognize

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log/slog"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/tonypeng1/moomoo/internal/variant"
)

// Vision matches terms in Google Cloud Vision TEXT_DETECTION output.
// TEXT_DETECTION reports no per-word score, so hits carry 1.0 like
// the tesseract path.
type Vision struct {
	client *gvision.ImageAnnotatorClient
}

// NewVision creates the client using application default credentials.
func NewVision(ctx context.Context) (*Vision, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &Vision{client: client}, nil
}

// Close releases the underlying gRPC connection.
func (v *Vision) Close() error { return v.client.Close() }

func (v *Vision) Kind() Kind { return KindText }

func (v *Vision) Recognize(ctx context.Context, va variant.Variant, terms []string) ([]Hit, error) {
	var img bytes.Buffer
	if err := png.Encode(&img, va.Image); err != nil {
		return nil, fmt.Errorf("vision: encode variant: %w", err)
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: img.Bytes()},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision: annotate: %w", err)
	}
	if len(resp.Responses) == 0 {
		return nil, nil
	}
	r := resp.Responses[0]
	if r.Error != nil {
		return nil, fmt.Errorf("vision: %s", r.Error.Message)
	}

	text := r.GetFullTextAnnotation().GetText()
	slog.Debug("vision output", "variant", va.Name, "text", text)
	return matchTerms(text, terms, KindText, va.Name), nil
}
