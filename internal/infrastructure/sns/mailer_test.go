package sns

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	got *sns.PublishInput
	err error
}

func (f *fakePublisher) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.got = in
	return &sns.PublishOutput{}, f.err
}

func TestTopicMailer_SendEmail(t *testing.T) {
	p := &fakePublisher{}
	m := newTopicMailer(p, "arn:aws:sns:us-east-1:000000000000:mail")

	require.NoError(t, m.SendEmail(context.Background(), "a@x.com", "Code", "123456"))
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:mail", aws.ToString(p.got.TopicArn))
	assert.Equal(t, "Code", aws.ToString(p.got.Subject))
	assert.Equal(t, "123456", aws.ToString(p.got.Message))
	assert.Equal(t, "a@x.com", aws.ToString(p.got.MessageAttributes["recipient"].StringValue))
}

func TestTopicMailer_Error(t *testing.T) {
	m := newTopicMailer(&fakePublisher{err: errors.New("down")}, "arn")
	assert.ErrorContains(t, m.SendEmail(context.Background(), "a@x.com", "s", "b"), "sns publish")
}
