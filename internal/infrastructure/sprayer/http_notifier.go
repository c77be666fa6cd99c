package sprayer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"sprayer-backend/internal/domain/port"
)

// Результат уведомления всё равно отбрасывается, поэтому таймаут короткий.
const notifyTimeout = 5 * time.Second

// sprayCommand — тело запроса к контроллеру распылителя.
type sprayCommand struct {
	NodeID     string `json:"node_id"`
	DurationMS int    `json:"duration_ms"`
}

// HTTPNotifier передаёт команду опрыскивания контроллеру узла (ESP32).
type HTTPNotifier struct {
	endpoint string
	http     *http.Client
}

// NewHTTPNotifier создаёт уведомитель для заданного эндпоинта.
func NewHTTPNotifier(endpoint string) *HTTPNotifier {
	return &HTTPNotifier{
		endpoint: endpoint,
		http:     &http.Client{Timeout: notifyTimeout},
	}
}

// Notify отправляет узлу длительность работы насоса. Тело ответа не
// читается, важен только статус; повторных попыток нет.
func (n *HTTPNotifier) Notify(ctx context.Context, nodeID string, durationMS int) error {
	if n.endpoint == "" {
		return errors.New("sprayer endpoint is not configured")
	}

	payload, err := json.Marshal(sprayCommand{NodeID: nodeID, DurationMS: durationMS})
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return fmt.Errorf("contact sprayer: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sprayer returned status %d", resp.StatusCode)
	}
	return nil
}

// Проверка реализации интерфейса
var _ port.SprayerNotifier = (*HTTPNotifier)(nil)
