package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

	"groundwater-quality-api/src/types"
)

// MaxReadings caps how many readings one request pulls from a partition.
const MaxReadings = 300

// ReadingGateway reads the most recent readings of a postal-code partition.
type ReadingGateway struct {
	client dynamodbiface.DynamoDBAPI
	table  string
	index  string
	logger *slog.Logger
}

func NewReadingGateway(client dynamodbiface.DynamoDBAPI, table, index string, logger *slog.Logger) *ReadingGateway {
	return &ReadingGateway{client: client, table: table, index: index, logger: logger}
}

// FetchLatest queries the kode_pos/timestamp index newest first. An empty slice means
// the partition has no readings; errors are transport or decoding failures.
func (g *ReadingGateway) FetchLatest(ctx context.Context, kodePos int64) ([]types.Reading, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(g.table),
		IndexName:              aws.String(g.index),
		KeyConditionExpression: aws.String("#kp = :kode_pos"),
		ExpressionAttributeNames: map[string]*string{
			"#kp": aws.String(types.AttrKodePos),
		},
		ExpressionAttributeValues: map[string]*dynamodb.AttributeValue{
			":kode_pos": {N: aws.String(strconv.FormatInt(kodePos, 10))},
		},
		ScanIndexForward: aws.Bool(false),
	}

	readings := make([]types.Reading, 0, MaxReadings)

	// A page can stop short of Limit at the 1 MB response cap, so keep
	// following LastEvaluatedKey until the cap is reached.
	for {
		input.Limit = aws.Int64(int64(MaxReadings - len(readings)))

		output, err := g.client.QueryWithContext(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query readings for kode_pos %d: %w", kodePos, err)
		}

		for _, item := range output.Items {
			var attrs map[string]interface{}
			if err := dynamodbattribute.UnmarshalMap(item, &attrs); err != nil {
				return nil, fmt.Errorf("failed to decode reading for kode_pos %d: %w", kodePos, err)
			}
			readings = append(readings, types.Reading{Attributes: attrs})
		}

		if len(readings) >= MaxReadings || len(output.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = output.LastEvaluatedKey
	}

	if len(readings) > MaxReadings {
		readings = readings[:MaxReadings]
	}

	g.logger.Debug("readings fetched", "kode_pos", kodePos, "count", len(readings))

	return readings, nil
}
