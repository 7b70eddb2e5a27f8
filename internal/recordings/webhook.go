package recordings

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/batchlms/backend/internal/zoom"
)

// Webhook signature headers sent by Zoom.
const (
	HeaderSignature = "x-zm-signature"
	HeaderTimestamp = "x-zm-request-timestamp"
)

// Dispatcher hands a verified recording event off for asynchronous
// reconciliation. The production implementation enqueues to Redis.
type Dispatcher interface {
	DispatchReconcile(ctx context.Context, rawEvent json.RawMessage) error
}

// WebhookHandler verifies inbound Zoom webhook deliveries and dispatches
// recording events. Verification runs over the raw request body: the route
// must not be behind any JSON-binding middleware, because re-serialization
// would change the byte layout and break the signature.
type WebhookHandler struct {
	secret     string
	dispatcher Dispatcher
	logger     *zap.Logger
}

// NewWebhookHandler creates a webhook handler. secret is the Zoom webhook
// secret token shared with the provider.
func NewWebhookHandler(secret string, dispatcher Dispatcher, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{secret: secret, dispatcher: dispatcher, logger: logger}
}

// Handle handles POST /zoom-webhook.
//
// Two terminal paths: the endpoint.url_validation handshake answers with an
// HMAC digest of the plain token (no signature check applies — this is Zoom
// proving we hold the secret), and every other event must carry a valid
// v0 signature over "v0:{timestamp}:{rawBody}".
//
// The response never waits on reconciliation: Zoom redelivers events that
// are not acknowledged promptly, so dispatch failures are logged and the
// delivery is still acknowledged.
func (h *WebhookHandler) Handle(c *gin.Context) {
	if h.secret == "" {
		h.logger.Error("zoom webhook secret not configured")
		c.String(http.StatusInternalServerError, "Server misconfigured")
		return
	}

	rawBody, err := c.GetRawData()
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid request")
		return
	}

	var event zoom.WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		c.String(http.StatusBadRequest, "Invalid request")
		return
	}

	if event.Event == zoom.EventURLValidation {
		plainToken := event.Payload.PlainToken
		c.JSON(http.StatusOK, gin.H{
			"plainToken":     plainToken,
			"encryptedToken": hmacHex(h.secret, plainToken),
		})
		return
	}

	signature := c.GetHeader(HeaderSignature)
	timestamp := c.GetHeader(HeaderTimestamp)
	if signature == "" || timestamp == "" {
		c.String(http.StatusUnauthorized, "Missing Zoom signature headers")
		return
	}

	expected := "v0=" + hmacHex(h.secret, "v0:"+timestamp+":"+string(rawBody))
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		h.logger.Warn("zoom signature mismatch")
		c.String(http.StatusUnauthorized, "Invalid signature")
		return
	}

	if event.IsRecordingEvent() {
		if err := h.dispatcher.DispatchReconcile(c.Request.Context(), rawBody); err != nil {
			// Acknowledge anyway; Zoom's redelivery covers lost dispatches.
			h.logger.Error("dispatch reconcile failed", zap.Error(err), zap.String("event", event.Event))
		}
	}

	c.String(http.StatusOK, "ok")
}

// Ping handles GET /zoom-webhook, a liveness check for webhook setup.
func (h *WebhookHandler) Ping(c *gin.Context) {
	c.String(http.StatusOK, "Zoom webhook endpoint is working")
}

func hmacHex(secret, message string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(message))
	return hex.EncodeToString(mac.Sum(nil))
}
