package dynamo

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
)

// NewClient returns a DynamoDB client on sess. A non-empty endpoint points the
// client at DynamoDB Local or another compatible store.
func NewClient(sess *session.Session, endpoint string) *dynamodb.DynamoDB {
	if endpoint == "" {
		return dynamodb.New(sess)
	}
	return dynamodb.New(sess, aws.NewConfig().WithEndpoint(endpoint))
}
