package vision

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// RekognitionAPI is the subset of the Rekognition client used here.
type RekognitionAPI interface {
	DetectLabels(ctx context.Context, in *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

const rekognitionAdvice = "Food items were identified from the photo, but sodium could not be estimated. " +
	"Prefer fresh, unprocessed foods and check labels for sodium content."

// Labels too generic to describe a meal.
var genericLabels = map[string]bool{
	"food": true, "meal": true, "dish": true, "plate": true, "produce": true, "lunch": true, "dinner": true,
}

// RekognitionAnalyzer identifies foods through label detection. It cannot
// estimate nutrients, so sodium is always unknown.
type RekognitionAnalyzer struct {
	client RekognitionAPI
}

func NewRekognitionAnalyzer(cfg aws.Config) *RekognitionAnalyzer {
	return &RekognitionAnalyzer{client: rekognition.NewFromConfig(cfg)}
}

// NewRekognitionAnalyzerWithClient is used by tests to inject a fake client.
func NewRekognitionAnalyzerWithClient(client RekognitionAPI) *RekognitionAnalyzer {
	return &RekognitionAnalyzer{client: client}
}

func (r *RekognitionAnalyzer) Analyze(ctx context.Context, image []byte, _ string) (*Analysis, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: image},
		MaxLabels:     aws.Int32(10),
		MinConfidence: aws.Float32(75),
	})
	if err != nil {
		return nil, fmt.Errorf("detect labels: %w", err)
	}

	var specific, all []string
	for _, l := range out.Labels {
		name := aws.ToString(l.Name)
		if name == "" {
			continue
		}
		all = append(all, name)
		if !genericLabels[strings.ToLower(name)] {
			specific = append(specific, name)
		}
	}
	foods := specific
	if len(foods) == 0 {
		foods = all
	}
	if len(foods) == 0 {
		foods = []string{"Unable to identify"}
	}

	return &Analysis{
		Foods:           foods,
		SodiumLevel:     SodiumUnknown,
		HealthRating:    defaultRating,
		Recommendations: rekognitionAdvice,
	}, nil
}
