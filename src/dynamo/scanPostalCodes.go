package dynamo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"

	"groundwater-quality-api/src/types"
)

// PostalCodeScanner lists the kode_pos/kelurahan pair of every item in the table.
type PostalCodeScanner struct {
	client dynamodbiface.DynamoDBAPI
	table  string
	logger *slog.Logger
}

func NewPostalCodeScanner(client dynamodbiface.DynamoDBAPI, table string, logger *slog.Logger) *PostalCodeScanner {
	return &PostalCodeScanner{client: client, table: table, logger: logger}
}

// ScanPostalCodes walks every page of the table in scan order and returns the decoded
// pairs together with the number of items scanned. Items whose kode_pos is missing or
// not a number, or whose kelurahan is missing or blank, are skipped.
func (s *PostalCodeScanner) ScanPostalCodes(ctx context.Context) ([]types.PostalCode, int, error) {
	input := &dynamodb.ScanInput{
		TableName:            aws.String(s.table),
		ProjectionExpression: aws.String("#kp, #kel"),
		ExpressionAttributeNames: map[string]*string{
			"#kp":  aws.String(types.AttrKodePos),
			"#kel": aws.String(types.AttrKelurahan),
		},
	}

	var entries []types.PostalCode
	scanned, skipped := 0, 0

	err := s.client.ScanPagesWithContext(ctx, input, func(page *dynamodb.ScanOutput, lastPage bool) bool {
		scanned += len(page.Items)
		for _, item := range page.Items {
			if _, ok := item[types.AttrKodePos]; !ok {
				skipped++
				continue
			}
			if kel, ok := item[types.AttrKelurahan]; !ok || aws.StringValue(kel.S) == "" {
				skipped++
				continue
			}

			var entry types.PostalCode
			if err := dynamodbattribute.UnmarshalMap(item, &entry); err != nil {
				skipped++
				continue
			}
			entries = append(entries, entry)
		}
		return true
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to scan table %s: %w", s.table, err)
	}

	if skipped > 0 {
		s.logger.Warn("skipped items without a numeric kode_pos or a kelurahan", "count", skipped)
	}

	return entries, scanned, nil
}
