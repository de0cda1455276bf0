package upstream

import (
	"context"
	"fmt"
	"net/url"

	"github.com/frenillazo/acainfo-portal-api/internal/models"
)

// EnrollmentClient reads a student's enrollments, the portal's only
// eligibility evidence. Enrollment lifecycle is owned upstream.
type EnrollmentClient struct {
	client *Client
}

// NewEnrollmentClient constructs an EnrollmentClient.
func NewEnrollmentClient(client *Client) *EnrollmentClient {
	return &EnrollmentClient{client: client}
}

// ListByStudent returns all enrollments held by the student.
func (c *EnrollmentClient) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	path := fmt.Sprintf("/students/%s/enrollments", url.PathEscape(studentID))
	if err := c.client.get(ctx, "enrollments.list", path, nil, &enrollments); err != nil {
		return nil, err
	}
	return enrollments, nil
}
