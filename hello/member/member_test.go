package member

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/kbukum/beankit/errors"
)

func TestServiceJoinAndFind(t *testing.T) {
	ctx := context.Background()
	svc := NewService(NewMemoryRepository())

	m := Member{ID: 1, Name: "memberA", Grade: VIP}
	if err := svc.Join(ctx, m); err != nil {
		t.Fatal(err)
	}
	found, err := svc.FindMember(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if found != m {
		t.Errorf("expected %+v, got %+v", m, found)
	}
}

func TestFindMissingMember(t *testing.T) {
	_, err := NewMemoryRepository().FindByID(context.Background(), 42)
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Code != apperrors.ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}
