package notifier

import (
	"bytes"
	"context"
	"testing"

	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestLogNotifier_TransferReceived(t *testing.T) {
	var buf bytes.Buffer
	n := New(logger.NewWithWriter("info", &buf))

	n.TransferReceived(context.Background(), ports.TransferNotice{
		Email:    "bob@example.com",
		FromName: "alice",
		ToName:   "bob",
		Currency: "TWD",
		Amount:   30000,
	})

	out := buf.String()
	assert.Contains(t, out, "bob@example.com")
	assert.Contains(t, out, "300.00")
	assert.Contains(t, out, "transfer notification sent")
}

func TestLogNotifier_NoEmailIsSilent(t *testing.T) {
	var buf bytes.Buffer
	n := New(logger.NewWithWriter("info", &buf))

	n.TransferReceived(context.Background(), ports.TransferNotice{FromName: "alice", ToName: "bob"})
	n.ExchangeCompleted(context.Background(), ports.ExchangeNotice{Name: "alice"})
	n.CredentialsReset(context.Background(), ports.ResetNotice{Name: "alice", NewSecret: "s3cret"})

	assert.Empty(t, buf.String())
}

func TestLogNotifier_ResetNeverLogsSecret(t *testing.T) {
	var buf bytes.Buffer
	n := New(logger.NewWithWriter("info", &buf))

	n.CredentialsReset(context.Background(), ports.ResetNotice{
		Email:     "alice@example.com",
		Name:      "alice",
		NewSecret: "tOpSecret42",
	})

	out := buf.String()
	assert.Contains(t, out, "alice@example.com")
	assert.NotContains(t, out, "tOpSecret42")
}
