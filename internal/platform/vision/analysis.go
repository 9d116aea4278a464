// Package vision turns a food photo into a hypertension-oriented nutrition
// analysis using either an OpenAI vision model or Amazon Rekognition.
package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
)

// Prompt is sent with every photo to the language model.
const Prompt = "Analyze this food image for a hypertension patient. Provide: 1) List of foods identified, " +
	"2) Estimated sodium content (low/medium/high), 3) Healthiness rating (1-10, 10=excellent for BP), " +
	"4) Brief recommendations for hypertension management. Format as JSON with keys: foods, sodium_level, " +
	"health_rating, recommendations, estimated_sodium_mg, estimated_calories"

const (
	SodiumLow     = "low"
	SodiumMedium  = "medium"
	SodiumHigh    = "high"
	SodiumUnknown = "unknown"

	defaultRating = 5
)

// Analysis is the result of analyzing one food photo.
type Analysis struct {
	Foods             []string `json:"foods"`
	SodiumLevel       string   `json:"sodium_level"`
	HealthRating      int      `json:"health_rating"`
	Recommendations   string   `json:"recommendations"`
	EstimatedSodiumMg *float64 `json:"estimated_sodium_mg"`
	EstimatedCalories *float64 `json:"estimated_calories"`
}

// Description joins the identified foods for use as a log description.
func (a *Analysis) Description() string {
	return strings.Join(a.Foods, ", ")
}

// Analyzer analyzes a decoded image.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte, mimeType string) (*Analysis, error)
}

// SodiumLevelFor buckets an estimated sodium amount per serving.
func SodiumLevelFor(mg float64) string {
	switch {
	case mg < 140:
		return SodiumLow
	case mg <= 600:
		return SodiumMedium
	default:
		return SodiumHigh
	}
}

func fallback(foods, content string) *Analysis {
	return &Analysis{
		Foods:           []string{foods},
		SodiumLevel:     SodiumUnknown,
		HealthRating:    defaultRating,
		Recommendations: content,
	}
}

type rawAnalysis struct {
	Foods             json.RawMessage `json:"foods"`
	SodiumLevel       json.RawMessage `json:"sodium_level"`
	HealthRating      json.RawMessage `json:"health_rating"`
	Recommendations   json.RawMessage `json:"recommendations"`
	EstimatedSodiumMg json.RawMessage `json:"estimated_sodium_mg"`
	EstimatedCalories json.RawMessage `json:"estimated_calories"`
}

// ParseAnalysis extracts the outermost JSON object from a model reply.
// A reply with no object yields an "Unable to identify" analysis, and an
// object that does not parse yields "Analysis completed"; both carry the
// reply text as the recommendation.
func ParseAnalysis(content string) *Analysis {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return fallback("Unable to identify", content)
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return fallback("Analysis completed", content)
	}

	a := &Analysis{
		Foods:             stringList(raw.Foods),
		Recommendations:   strings.Join(stringList(raw.Recommendations), " "),
		EstimatedSodiumMg: number(raw.EstimatedSodiumMg),
		EstimatedCalories: number(raw.EstimatedCalories),
		HealthRating:      defaultRating,
	}
	if len(a.Foods) == 0 {
		a.Foods = []string{"Unable to identify"}
	}
	if r := number(raw.HealthRating); r != nil {
		a.HealthRating = clampRating(*r)
	}

	level := ""
	if s := stringList(raw.SodiumLevel); len(s) > 0 {
		level = strings.ToLower(s[0])
	}
	switch level {
	case SodiumLow, SodiumMedium, SodiumHigh:
		a.SodiumLevel = level
	default:
		a.SodiumLevel = SodiumUnknown
		if a.EstimatedSodiumMg != nil {
			a.SodiumLevel = SodiumLevelFor(*a.EstimatedSodiumMg)
		}
	}
	return a
}

func clampRating(r float64) int {
	n := int(math.Round(r))
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}

// stringList accepts a JSON string or an array of strings.
func stringList(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		if one = strings.TrimSpace(one); one != "" {
			return []string{one}
		}
		return nil
	}
	var many []any
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil
	}
	out := make([]string, 0, len(many))
	for _, v := range many {
		if v == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var leadingNumber = regexp.MustCompile(`^-?\d+(\.\d+)?`)

// number accepts a JSON number or a string starting with one ("450 mg").
func number(raw json.RawMessage) *float64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	m := leadingNumber.FindString(strings.TrimSpace(s))
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &f
}

var dataURI = regexp.MustCompile(`^data:(image/[a-zA-Z0-9.+-]+);base64,`)

// DecodeImage accepts raw base64 or a data:image/...;base64, URI and
// returns the bytes with their content type.
func DecodeImage(input string) ([]byte, string, error) {
	input = strings.TrimSpace(input)
	mimeType := ""
	if m := dataURI.FindStringSubmatch(input); m != nil {
		mimeType = strings.ToLower(m[1])
		input = input[len(m[0]):]
	} else if strings.HasPrefix(input, "data:") {
		return nil, "", fmt.Errorf("unsupported data URI: expected data:image/...;base64")
	}

	data, err := base64.StdEncoding.DecodeString(input)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(input, "="))
		if err != nil {
			return nil, "", fmt.Errorf("invalid base64 image data")
		}
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("image is empty")
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
		if !strings.HasPrefix(mimeType, "image/") {
			mimeType = "image/jpeg"
		}
	}
	return data, mimeType, nil
}
