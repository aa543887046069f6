package sagemaker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sagemakerruntime"
	"github.com/aws/aws-sdk-go/service/sagemakerruntime/sagemakerruntimeiface"
)

type SageMakerResponse struct {
	Scores []struct {
		Score float64 `json:"score"`
	} `json:"scores"`
}

type instance struct {
	Features []float64 `json:"features"`
}

type payload struct {
	Instances []instance `json:"instances"`
}

// Classifier scores feature rows with a hosted SageMaker endpoint. It satisfies
// model.Classifier.
type Classifier struct {
	client       sagemakerruntimeiface.SageMakerRuntimeAPI
	endpointName string
}

func NewClassifier(client sagemakerruntimeiface.SageMakerRuntimeAPI, endpointName string) *Classifier {
	return &Classifier{client: client, endpointName: endpointName}
}

// Predict sends every row in a single request and returns the scores in row order.
func (c *Classifier) Predict(ctx context.Context, x [][]float64) ([]float64, error) {
	if len(x) == 0 {
		return []float64{}, nil
	}

	req := payload{Instances: make([]instance, len(x))}
	for i, row := range x {
		req.Instances[i] = instance{Features: row}
	}

	payloadBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}

	output, err := c.client.InvokeEndpointWithContext(ctx, &sagemakerruntime.InvokeEndpointInput{
		EndpointName: aws.String(c.endpointName),
		Body:         payloadBytes,
		ContentType:  aws.String("application/json"),
		Accept:       aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke endpoint %s: %w", c.endpointName, err)
	}

	var response SageMakerResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Scores) != len(x) {
		return nil, fmt.Errorf("endpoint %s returned %d scores for %d rows", c.endpointName, len(response.Scores), len(x))
	}

	scores := make([]float64, len(response.Scores))
	for i, s := range response.Scores {
		scores[i] = s.Score
	}

	return scores, nil
}
