package estimator

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// VisionClient calls the hosted vision model over HTTP.
type VisionClient struct {
	client  *resty.Client
	baseURL string
	apiKey  string
}

func NewVisionClient(baseURL, apiKey string) *VisionClient {
	return &VisionClient{
		client:  resty.New(),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

type visionRequest struct {
	Photos []string `json:"photos"`
	SkuIDs []uint   `json:"skuIds"`
}

type visionLine struct {
	SkuID      uint    `json:"skuId"`
	Quantity   int     `json:"quantity"`
	Confidence float64 `json:"confidence"`
}

type visionResponse struct {
	Confidence float64      `json:"confidence"`
	Items      []visionLine `json:"items"`
}

func (v *VisionClient) Estimate(ctx context.Context, photoRefs []string, skuIDs []uint) (*Result, error) {
	var out visionResponse

	resp, err := v.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+v.apiKey).
		SetBody(visionRequest{Photos: photoRefs, SkuIDs: skuIDs}).
		SetResult(&out).
		Post(v.baseURL + "/v1/pallet-count")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("vision api returned status %d", resp.StatusCode())
	}

	result := &Result{Confidence: out.Confidence}
	for _, line := range out.Items {
		result.Items = append(result.Items, ItemEstimate{
			SkuID:      line.SkuID,
			Quantity:   line.Quantity,
			Confidence: line.Confidence,
		})
	}
	return result, nil
}
