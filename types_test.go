package folio_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/folio"
)

func TestMediaBackend_IsValid(t *testing.T) {
	assert.True(t, folio.BackendLocal.IsValid())
	assert.True(t, folio.BackendRemote.IsValid())
	assert.False(t, folio.MediaBackend("").IsValid())
	assert.False(t, folio.MediaBackend("LOCAL").IsValid())
}

func TestParseMediaBackend(t *testing.T) {
	tests := []struct {
		input   string
		want    folio.MediaBackend
		wantErr bool
	}{
		{"local", folio.BackendLocal, false},
		{"remote", folio.BackendRemote, false},
		{"", "", true},
		{"s3", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := folio.ParseMediaBackend(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid storage backend")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTables_Validate(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		wantErr bool
	}{
		{"default", "folio_document", false},
		{"leading underscore", "_docs", false},
		{"empty", "", true},
		{"uppercase", "Docs", true},
		{"dash", "my-docs", true},
		{"leading digit", "1docs", true},
		{"injection", "docs; DROP TABLE users", true},
		{"too long", strings.Repeat("a", 64), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := folio.Tables{Document: tt.table}.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDocument_Normalize(t *testing.T) {
	var doc folio.Document
	doc.Normalize()

	assert.NotNil(t, doc.Users)
	assert.NotNil(t, doc.Sessions)
	assert.NotNil(t, doc.Images)
	assert.NotNil(t, doc.Galleries)
	assert.Equal(t, folio.NewDocument(), doc)
}

func TestDocument_Find(t *testing.T) {
	doc := folio.NewDocument()
	doc.Users = append(doc.Users, folio.User{Username: "alice"}, folio.User{Username: "bob"})
	doc.Images = append(doc.Images, folio.ImageRecord{Filename: "a.png"})

	assert.Equal(t, 1, doc.FindUser("bob"))
	assert.Equal(t, -1, doc.FindUser("Bob"))
	assert.Equal(t, 0, doc.FindImage("a.png"))
	assert.Equal(t, -1, doc.FindImage("b.png"))
}

func TestUploadResult_Err(t *testing.T) {
	assert.NoError(t, folio.UploadResult{}.Err())
	assert.ErrorIs(t, folio.UploadResult{Degraded: true}.Err(), folio.ErrStorageDegraded)
}
