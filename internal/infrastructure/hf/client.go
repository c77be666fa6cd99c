package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sprayer-backend/internal/domain/entity"
	"sprayer-backend/internal/domain/port"
)

// Модель отвечает метками здоровья либо болезни; метку считаем
// "больной", если она содержит одно из этих слов (без учёта регистра).
var infectedKeywords = []string{"infect", "disease", "blight", "spot"}

const requestTimeout = 60 * time.Second

// prediction — один элемент ответа Inference API.
type prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Client вызывает HuggingFace Inference API для классификации снимка.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// NewClient создаёт клиента. Пустой endpoint или token не ошибка:
// такой клиент сразу сообщает RemoteNotConfigured, не трогая сеть.
func NewClient(endpoint, token string) *Client {
	return &Client{
		endpoint: endpoint,
		token:    token,
		http:     &http.Client{Timeout: requestTimeout},
	}
}

// Classify отправляет сырые байты снимка модели и читает верхнее
// предсказание. Любой сбой кодируется в RemoteResult, а не в ошибку:
// резолвер переключается на локальный путь по варианту исхода.
func (c *Client) Classify(ctx context.Context, imageData []byte) port.RemoteResult {
	if c.endpoint == "" || c.token == "" {
		return port.RemoteResult{Kind: port.RemoteNotConfigured}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(imageData))
	if err != nil {
		return failed(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return failed(fmt.Errorf("call inference: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failed(fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failed(fmt.Errorf("inference returned status %d", resp.StatusCode))
	}

	var preds []prediction
	if err := json.Unmarshal(body, &preds); err != nil {
		return failed(fmt.Errorf("parse response: %w", err))
	}
	if len(preds) == 0 {
		return failed(errors.New("empty prediction list"))
	}

	// Список отсортирован по убыванию уверенности, берём верхний элемент.
	top := preds[0]
	infectedProb := top.Score
	if !labelLooksInfected(top.Label) {
		// Метка о здоровье: инвертируем уверенность в вероятность заражения.
		infectedProb = 1.0 - top.Score
	}

	return port.RemoteResult{
		Kind: port.RemoteOK,
		Classification: &entity.Classification{
			Label:        top.Label,
			InfectedProb: infectedProb,
			Meta:         string(body),
		},
	}
}

func labelLooksInfected(label string) bool {
	lower := strings.ToLower(label)
	for _, kw := range infectedKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func failed(err error) port.RemoteResult {
	return port.RemoteResult{Kind: port.RemoteFailed, Err: err}
}

// Проверка реализации интерфейса
var _ port.RemoteClassifier = (*Client)(nil)
