package upstream

import (
	"context"
	"fmt"
	"net/url"

	"github.com/frenillazo/acainfo-portal-api/internal/models"
)

// SessionClient reads sessions from the academy API. Sessions are created by
// schedule generation and mutated by administrators upstream; the portal
// never writes them.
type SessionClient struct {
	client *Client
}

// NewSessionClient constructs a SessionClient.
func NewSessionClient(client *Client) *SessionClient {
	return &SessionClient{client: client}
}

// FindByID loads a single session.
func (c *SessionClient) FindByID(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := c.client.get(ctx, "sessions.find", fmt.Sprintf("/sessions/%s", url.PathEscape(id)), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns sessions matching the filter.
func (c *SessionClient) List(ctx context.Context, filter models.SessionFilter) ([]models.Session, error) {
	query := url.Values{}
	if filter.GroupID != "" {
		query.Set("groupId", filter.GroupID)
	}
	if filter.SubjectID != "" {
		query.Set("subjectId", filter.SubjectID)
	}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.DateFrom != nil {
		query.Set("dateFrom", filter.DateFrom.Format("2006-01-02"))
	}
	if filter.DateTo != nil {
		query.Set("dateTo", filter.DateTo.Format("2006-01-02"))
	}

	var sessions []models.Session
	if err := c.client.get(ctx, "sessions.list", "/sessions", query, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
