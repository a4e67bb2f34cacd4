package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestPostgresErrorClassification(t *testing.T) {
	fk := &pq.Error{Code: "23503", Constraint: "blogs_company_id_fkey"}
	uniq := &pq.Error{Code: "23505", Constraint: "blogs_handle_key"}

	assert.True(t, ForeignKeyError(fk, "blogs_company_id_fkey"))
	assert.True(t, ForeignKeyError(fmt.Errorf("insert: %w", fk), "blogs_company_id_fkey"))
	assert.False(t, ForeignKeyError(fk, "users_company_id_fkey"))
	assert.False(t, ForeignKeyError(uniq, "blogs_handle_key"))

	assert.True(t, UniqueError(uniq, "blogs_handle_key"))
	assert.False(t, UniqueError(errors.New("boom"), "blogs_handle_key"))
}
