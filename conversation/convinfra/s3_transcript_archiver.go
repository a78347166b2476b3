package convinfra

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/Abraxas-365/craftable/logx"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/pelangilabs/moltbot/conversation"
)

// S3TranscriptArchiver escribe la transcripción de una conversación terminada
// como objeto JSON en transcripts/<conversation_id>.json
type S3TranscriptArchiver struct {
	client *s3.Client
	bucket string
}

var _ conversation.TranscriptArchiver = (*S3TranscriptArchiver)(nil)

func NewS3TranscriptArchiver(region, bucket, accessKey, secretKey string) *S3TranscriptArchiver {
	client := s3.New(s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	})

	return &S3TranscriptArchiver{
		client: client,
		bucket: bucket,
	}
}

// transcript es el objeto archivado
type transcript struct {
	ConversationID string     `json:"conversation_id"`
	Channel        string     `json:"channel"`
	Sender         string     `json:"sender"`
	GuestName      string     `json:"guest_name,omitempty"`
	Status         string     `json:"status"`
	Summary        string     `json:"summary"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ArchivedAt     time.Time  `json:"archived_at"`
}

func (a *S3TranscriptArchiver) Archive(ctx context.Context, conv *conversation.Conversation, summary string) error {
	data, err := json.Marshal(transcript{
		ConversationID: conv.ID.String(),
		Channel:        conv.Channel,
		Sender:         conv.Sender,
		GuestName:      conv.GuestName,
		Status:         string(conv.Status),
		Summary:        summary,
		StartedAt:      conv.StartedAt,
		CompletedAt:    conv.CompletedAt,
		ArchivedAt:     time.Now(),
	})
	if err != nil {
		return conversation.ErrArchiveFailed().WithCause(err)
	}

	key := "transcripts/" + conv.ID.String() + ".json"

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return conversation.ErrArchiveFailed().
			WithDetail("bucket", a.bucket).
			WithDetail("key", key).
			WithCause(err)
	}

	logx.Info("🗄️ Transcript archived: s3://%s/%s", a.bucket, key)
	return nil
}
