package inmemory

import (
	"log/slog"
	"sync"

	"github.com/sharetube/multiview/internal/repository/connection"
)

type repo struct {
	clients map[string]*connection.Client
	mu      sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		clients: make(map[string]*connection.Client),
	}
}

func (r *repo) Add(client *connection.Client) error {
	funcName := "connection.inmemory.Add"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "client_id", client.Id, "session_id", client.SessionId)
	if _, ok := r.clients[client.Id]; ok {
		slog.Info(funcName, "error", connection.ErrAlreadyExists)
		return connection.ErrAlreadyExists
	}

	r.clients[client.Id] = client

	slog.Debug(funcName, "result", "OK")
	return nil
}

// Remove forgets the client and closes its connection.
func (r *repo) Remove(clientId string) error {
	funcName := "connection.inmemory.Remove"
	r.mu.Lock()
	defer r.mu.Unlock()

	slog.Debug(funcName, "client_id", clientId)
	client, ok := r.clients[clientId]
	if !ok {
		slog.Info(funcName, "error", connection.ErrNotFound)
		return connection.ErrNotFound
	}
	client.Close()

	delete(r.clients, clientId)

	slog.Debug(funcName, "result", "OK")
	return nil
}
