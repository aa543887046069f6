package dynamo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"groundwater-quality-api/src/types"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeDynamo struct {
	dynamodbiface.DynamoDBAPI

	queryPages []*dynamodb.QueryOutput
	queryErr   error
	queries    []dynamodb.QueryInput

	scanPages []*dynamodb.ScanOutput
	scanErr   error
	scanInput *dynamodb.ScanInput
}

func (f *fakeDynamo) QueryWithContext(_ aws.Context, input *dynamodb.QueryInput, _ ...request.Option) (*dynamodb.QueryOutput, error) {
	f.queries = append(f.queries, *input)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	page := f.queryPages[0]
	f.queryPages = f.queryPages[1:]
	return page, nil
}

func (f *fakeDynamo) ScanPagesWithContext(_ aws.Context, input *dynamodb.ScanInput, fn func(*dynamodb.ScanOutput, bool) bool, _ ...request.Option) error {
	f.scanInput = input
	if f.scanErr != nil {
		return f.scanErr
	}
	for i, page := range f.scanPages {
		if !fn(page, i == len(f.scanPages)-1) {
			break
		}
	}
	return nil
}

func readingItem(kodePos int, ts int64, ph string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		"kode_pos":    {N: aws.String(strconv.Itoa(kodePos))},
		"timestamp":   {N: aws.String(strconv.FormatInt(ts, 10))},
		"ph":          {N: aws.String(ph)},
		"temperature": {N: aws.String("27.5")},
		"tds":         {S: aws.String("312")},
		"kelurahan":   {S: aws.String("Sukamaju")},
	}
}

func TestFetchLatest_BuildsIndexQuery(t *testing.T) {
	client := &fakeDynamo{queryPages: []*dynamodb.QueryOutput{{
		Items: []map[string]*dynamodb.AttributeValue{
			readingItem(12345, 1700000002000, "7.1"),
			readingItem(12345, 1700000001000, "6.8"),
		},
	}}}
	g := NewReadingGateway(client, "groundwater", "kode_pos-timestamp-index", discard)

	readings, err := g.FetchLatest(context.Background(), 12345)
	require.NoError(t, err)

	require.Len(t, client.queries, 1)
	q := client.queries[0]
	assert.Equal(t, "groundwater", aws.StringValue(q.TableName))
	assert.Equal(t, "kode_pos-timestamp-index", aws.StringValue(q.IndexName))
	assert.Equal(t, "#kp = :kode_pos", aws.StringValue(q.KeyConditionExpression))
	assert.Equal(t, "kode_pos", aws.StringValue(q.ExpressionAttributeNames["#kp"]))
	assert.Equal(t, "12345", aws.StringValue(q.ExpressionAttributeValues[":kode_pos"].N))
	assert.False(t, aws.BoolValue(q.ScanIndexForward))
	assert.EqualValues(t, MaxReadings, aws.Int64Value(q.Limit))

	require.Len(t, readings, 2)
	assert.Equal(t, float64(1700000002000), readings[0].Attributes["timestamp"])
	assert.Equal(t, 7.1, readings[0].Attributes["ph"])
	assert.Equal(t, "312", readings[0].Attributes["tds"])
	assert.Equal(t, "Sukamaju", readings[1].Attributes["kelurahan"])
}

func TestFetchLatest_EmptyPartition(t *testing.T) {
	client := &fakeDynamo{queryPages: []*dynamodb.QueryOutput{{}}}
	g := NewReadingGateway(client, "groundwater", "idx", discard)

	readings, err := g.FetchLatest(context.Background(), 99999)
	require.NoError(t, err)
	assert.NotNil(t, readings)
	assert.Empty(t, readings)
}

func TestFetchLatest_FollowsPagesUpToCap(t *testing.T) {
	page := func(n int, more bool) *dynamodb.QueryOutput {
		out := &dynamodb.QueryOutput{}
		for i := 0; i < n; i++ {
			out.Items = append(out.Items, readingItem(12345, int64(1700000000000-i), "7"))
		}
		if more {
			out.LastEvaluatedKey = map[string]*dynamodb.AttributeValue{"kode_pos": {N: aws.String("12345")}}
		}
		return out
	}
	client := &fakeDynamo{queryPages: []*dynamodb.QueryOutput{page(120, true), page(180, true)}}
	g := NewReadingGateway(client, "groundwater", "idx", discard)

	readings, err := g.FetchLatest(context.Background(), 12345)
	require.NoError(t, err)

	assert.Len(t, readings, MaxReadings)
	require.Len(t, client.queries, 2)
	assert.EqualValues(t, 300, aws.Int64Value(client.queries[0].Limit))
	assert.EqualValues(t, 180, aws.Int64Value(client.queries[1].Limit))
	assert.NotNil(t, client.queries[1].ExclusiveStartKey)
}

func TestFetchLatest_QueryError(t *testing.T) {
	cause := errors.New("RequestError: send request failed")
	client := &fakeDynamo{queryErr: cause}
	g := NewReadingGateway(client, "groundwater", "idx", discard)

	_, err := g.FetchLatest(context.Background(), 12345)
	assert.ErrorIs(t, err, cause)
}

func TestScanPostalCodes_AllPagesInOrder(t *testing.T) {
	entry := func(kp, kel string) map[string]*dynamodb.AttributeValue {
		return map[string]*dynamodb.AttributeValue{
			"kode_pos":  {N: aws.String(kp)},
			"kelurahan": {S: aws.String(kel)},
		}
	}
	client := &fakeDynamo{scanPages: []*dynamodb.ScanOutput{
		{Items: []map[string]*dynamodb.AttributeValue{entry("40111", "Braga"), entry("40112", "Merdeka")}},
		{Items: []map[string]*dynamodb.AttributeValue{
			entry("40111", "Braga Lama"),
			{"kelurahan": {S: aws.String("Tanpa Kode")}},
			{"kode_pos": {S: aws.String("abc")}, "kelurahan": {S: aws.String("Salah")}},
			{"kode_pos": {N: aws.String("40113")}},
			entry("40114", ""),
		}},
	}}
	s := NewPostalCodeScanner(client, "groundwater", discard)

	entries, scanned, err := s.ScanPostalCodes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, scanned)
	assert.Equal(t, []types.PostalCode{
		{KodePos: 40111, Kelurahan: "Braga"},
		{KodePos: 40112, Kelurahan: "Merdeka"},
		{KodePos: 40111, Kelurahan: "Braga Lama"},
	}, entries)
	assert.Equal(t, "#kp, #kel", aws.StringValue(client.scanInput.ProjectionExpression))
}

func TestScanPostalCodes_Error(t *testing.T) {
	client := &fakeDynamo{scanErr: errors.New("AccessDeniedException")}
	s := NewPostalCodeScanner(client, "groundwater", discard)

	_, _, err := s.ScanPostalCodes(context.Background())
	assert.ErrorContains(t, err, "failed to scan table groundwater")
}
