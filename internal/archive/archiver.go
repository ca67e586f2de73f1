// Package archive mirrors finished generation artifacts into the object
// store and announces them on a NATS subject. Archiving is best-effort from
// the generation path's point of view: errors returned here are logged by the
// orchestrator, never surfaced to the requesting client.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/book-expert/events"
	"github.com/book-expert/logger"
	"github.com/book-expert/voice-service/internal/core"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// GenerationCompletedEvent announces one archived artifact to downstream
// consumers.
type GenerationCompletedEvent struct {
	Header      events.EventHeader `json:"header"`
	ArtifactKey string             `json:"artifact_key"`
	AudioURL    string             `json:"audio_url"`
}

// Archiver implements core.ArtifactSink on top of a blob store and a NATS
// connection.
type Archiver struct {
	store          core.ObjectStore
	natsConnection *nats.Conn
	subject        string
	log            *logger.Logger
}

// New creates an archiver publishing on the given subject.
func New(store core.ObjectStore, natsConnection *nats.Conn, subject string, log *logger.Logger) *Archiver {
	return &Archiver{
		store:          store,
		natsConnection: natsConnection,
		subject:        subject,
		log:            log,
	}
}

// Archive uploads the artifact audio under its file name and publishes a
// GenerationCompletedEvent. The artifact id doubles as the workflow id so
// consumers can correlate the event with the served audio URL.
func (a *Archiver) Archive(ctx context.Context, artifact core.GenerationArtifact, audio []byte) error {
	uploadErr := a.store.Upload(ctx, artifact.FileName, audio)
	if uploadErr != nil {
		return fmt.Errorf("failed to upload artifact '%s': %w", artifact.FileName, uploadErr)
	}

	event := GenerationCompletedEvent{
		Header: events.EventHeader{
			Timestamp:  time.Now().UTC(),
			WorkflowID: artifact.ID,
			EventID:    uuid.NewString(),
			UserID:     "",
			TenantID:   "",
		},
		ArtifactKey: artifact.FileName,
		AudioURL:    artifact.URL,
	}

	data, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		return fmt.Errorf("failed to marshal completion event: %w", marshalErr)
	}

	publishErr := a.natsConnection.Publish(a.subject, data)
	if publishErr != nil {
		return fmt.Errorf("failed to publish completion event: %w", publishErr)
	}

	a.log.Info("Archived artifact %s and published to %s", artifact.FileName, a.subject)

	return nil
}
