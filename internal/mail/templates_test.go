package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderVerification(t *testing.T) {
	subject, body, err := Render(KindVerification, TemplateData{
		UserName:   "Alice",
		Link:       "http://localhost:3000/verify-account/tok",
		TTLMinutes: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, "Verify Your Account - TunePulse", subject)
	assert.Contains(t, body, "Hello Alice")
	assert.Contains(t, body, "http://localhost:3000/verify-account/tok")
	assert.Contains(t, body, "expire in 10 minutes")
}

func TestRenderTicketCreated(t *testing.T) {
	subject, body, err := Render(KindTicketCreated, TemplateData{
		TicketID: "T-abc123-zz99",
		Title:    "Player keeps buffering",
		Category: "Playback",
		Priority: "High",
		Status:   "Open",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ticket Created - T-abc123-zz99", subject)
	assert.Contains(t, body, "T-abc123-zz99")
	assert.Contains(t, body, "Player keeps buffering")
	assert.Contains(t, body, "High")
}

func TestRenderTicketReply(t *testing.T) {
	subject, body, err := Render(KindTicketReply, TemplateData{
		TicketID: "T-abc123-zz99",
		Reply:    "We pushed a fix, please retry.",
	})
	require.NoError(t, err)
	assert.Equal(t, "Response to Your Ticket - T-abc123-zz99", subject)
	assert.Contains(t, body, "We pushed a fix, please retry.")
}

func TestRenderEscapesHTML(t *testing.T) {
	_, body, err := Render(KindTicketReply, TemplateData{
		TicketID: "T-abc123-zz99",
		Reply:    "<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}

func TestRenderUnknownKind(t *testing.T) {
	_, _, err := Render(Kind("nope"), TemplateData{})
	assert.Error(t, err)
}
