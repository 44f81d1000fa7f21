package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Goh0809/Eventora-Backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_List(t *testing.T) {
	tests := []struct {
		name      string
		rows      []domain.Category
		repoErr   error
		wantNames []string
		wantErr   error
	}{
		{
			name:      "sorted with other last",
			rows:      []domain.Category{{Name: "Other"}, {Name: "music"}, {Name: "Art"}},
			wantNames: []string{"Art", "music", "Other"},
		},
		{
			name:    "empty is not found",
			rows:    []domain.Category{},
			wantErr: domain.ErrNoCategoriesFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewCategoryService(&MockCategoryRepository{
				ListFunc: func(ctx context.Context) ([]domain.Category, error) { return tt.rows, tt.repoErr },
			})

			got, err := svc.List(context.Background())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			names := make([]string, len(got))
			for i, c := range got {
				names[i] = c.Name
			}
			assert.Equal(t, tt.wantNames, names)
		})
	}

	t.Run("repository error", func(t *testing.T) {
		boom := errors.New("db down")
		svc := NewCategoryService(&MockCategoryRepository{
			ListFunc: func(ctx context.Context) ([]domain.Category, error) { return nil, boom },
		})

		_, err := svc.List(context.Background())

		assert.ErrorIs(t, err, boom)
	})
}
