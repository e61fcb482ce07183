package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omarmfouad25/travel-agency-dashboard/internal/model"
)

func TestImageURLsRoundTrip(t *testing.T) {
	s, err := EncodeImageURLs(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	out, err := DecodeImageURLs("")
	require.NoError(t, err)
	assert.Equal(t, []string{}, out)

	s, err = EncodeImageURLs([]string{"a", "b"})
	require.NoError(t, err)
	out, err = DecodeImageURLs(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out)

	_, err = DecodeImageURLs("{")
	assert.Error(t, err)
}

func TestMergeUser(t *testing.T) {
	joined := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	fresh := MergeUser(nil, &model.User{UserID: "u1", Email: "a@b.c"})
	assert.Equal(t, model.UserStatusUser, fresh.Status)
	assert.False(t, fresh.JoinedAt.IsZero())

	existing := &model.User{UserID: "u1", Status: model.UserStatusAdmin, JoinedAt: joined}
	merged := MergeUser(existing, &model.User{UserID: "u1", Email: "x@y.z", JoinedAt: time.Now()})
	assert.Equal(t, model.UserStatusAdmin, merged.Status)
	assert.Equal(t, joined, merged.JoinedAt)
	assert.Equal(t, "x@y.z", merged.Email)
}
