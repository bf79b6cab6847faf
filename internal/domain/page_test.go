package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moonwavetravel/backend/internal/domain"
)

func TestNewPageRequest(t *testing.T) {
	n := func(v int) *int { return &v }
	tests := []struct {
		name        string
		page, limit *int
		want        domain.PageRequest
	}{
		{"defaults", nil, nil, domain.PageRequest{Page: 1, Limit: domain.DefaultPageLimit}},
		{"explicit", n(3), n(10), domain.PageRequest{Page: 3, Limit: 10}},
		{"capped limit", n(1), n(500), domain.PageRequest{Page: 1, Limit: domain.MaxPageLimit}},
		{"non-positive ignored", n(0), n(-5), domain.PageRequest{Page: 1, Limit: domain.DefaultPageLimit}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.NewPageRequest(tc.page, tc.limit))
		})
	}
}

func TestPageRequest_arithmetic(t *testing.T) {
	p := domain.PageRequest{Page: 2, Limit: 20}

	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(20))
	assert.Equal(t, 3, p.TotalPages(41))
	assert.True(t, p.HasNext(41))
	assert.False(t, p.HasNext(40))
	assert.False(t, p.HasNext(0))
}
