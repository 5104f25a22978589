// Package file ведёт журнал сохранённых сообщений в формате JSON Lines:
// одна запись на каждое сообщение, собранное вкладкой после правки.
package file

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

type Event struct {
	UUID      string    `json:"uuid"`
	TabID     string    `json:"tab_id"`
	Outcome   string    `json:"outcome"`
	IsRequest bool      `json:"is_request"`
	Size      int       `json:"size"`
	Error     string    `json:"error,omitempty"`
	Time      time.Time `json:"time"`
}

// Producer дописывает события в конец файла. Безопасен для конкурентного использования.
type Producer struct {
	mu      sync.Mutex
	File    *os.File
	encoder *json.Encoder
}

func NewProducer(fileName string) (*Producer, error) {
	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, err
	}

	return &Producer{
		File:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

func (p *Producer) WriteEvent(event *Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(event)
}

func (p *Producer) Close() error {
	return p.File.Close()
}
