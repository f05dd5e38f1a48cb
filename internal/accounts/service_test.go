package accounts

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/repository"
)

// --- インメモリのフェイクリポジトリ ---

type fakeUserRepo struct {
	users map[string]*model.User // key: lower(email)
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}}
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if u, ok := f.users[strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	key := strings.ToLower(user.Email)
	if _, ok := f.users[key]; ok {
		return repository.ErrEmailTaken
	}
	f.users[key] = user
	return nil
}

func (f *fakeUserRepo) Replace(ctx context.Context, user *model.User) error {
	f.users[strings.ToLower(user.Email)] = user
	return nil
}

func (f *fakeUserRepo) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	key := strings.ToLower(email)
	if _, ok := f.users[key]; !ok {
		return 0, nil
	}
	delete(f.users, key)
	return 1, nil
}

func (f *fakeUserRepo) ListEmails(ctx context.Context) ([]string, error) {
	var emails []string
	for _, u := range f.users {
		emails = append(emails, u.Email)
	}
	sort.Strings(emails)
	return emails, nil
}

func (f *fakeUserRepo) UpdateHashedPassword(ctx context.Context, id, hashedPassword string) error {
	for _, u := range f.users {
		if u.ID == id {
			u.HashedPassword = hashedPassword
			return nil
		}
	}
	return nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(plaintext string) (string, error) { return "hashed:" + plaintext, nil }
func (fakeHasher) Verify(plaintext, hashed string) (bool, bool) {
	return hashed == "hashed:"+plaintext, false
}

func isAlreadyExists(err error) bool {
	var apiErr *model.APIError
	return errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeAlreadyExists
}

func isNotFound(err error) bool {
	var apiErr *model.APIError
	return errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeNotFound
}

// --- テスト ---

func TestService_Create_HashesPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, fakeHasher{})

	user, err := svc.Create(context.Background(), "u@example.com", "pw123", false)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if user.HashedPassword != "hashed:pw123" {
		t.Errorf("HashedPassword = %q, want hashed value", user.HashedPassword)
	}
	if user.ID == "" {
		t.Error("expected non-empty ID")
	}
	if !user.IsActive {
		t.Error("expected new user to be active")
	}
}

// 大文字小文字のみ異なるメールアドレスでの再作成は2回とも失敗し、行は1件のまま
func TestService_Create_DuplicateEmail_FailsBothTimes(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, fakeHasher{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u@example.com", "pw123", false); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		_, err := svc.Create(ctx, "U@Example.COM", "pw456", false)
		if !isAlreadyExists(err) {
			t.Fatalf("attempt %d: err = %v, want AlreadyExists", i+1, err)
		}
	}

	if len(repo.users) != 1 {
		t.Errorf("row count = %d, want 1", len(repo.users))
	}
}

func TestService_Create_AlreadyExists_ReportsEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, fakeHasher{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u@example.com", "pw123", false); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := svc.Create(ctx, "u@example.com", "pw456", false)
	if err == nil || !strings.Contains(err.Error(), "u@example.com") {
		t.Errorf("err = %v, want message containing the conflicting email", err)
	}
}

func TestService_CreateOrOverwrite_WithoutForce_FailsOnExisting(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, fakeHasher{})
	ctx := context.Background()

	if _, _, err := svc.CreateOrOverwrite(ctx, "u@example.com", "pw123", false, false); err != nil {
		t.Fatalf("first CreateOrOverwrite failed: %v", err)
	}

	_, _, err := svc.CreateOrOverwrite(ctx, "u@example.com", "pw456", false, false)
	if !isAlreadyExists(err) {
		t.Errorf("err = %v, want AlreadyExists", err)
	}
}

// force指定の上書きは旧IDを破棄し、新しいパスワードのみが有効になる
func TestService_CreateOrOverwrite_Force_ReplacesRow(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, fakeHasher{})
	ctx := context.Background()

	oldUser, _, err := svc.CreateOrOverwrite(ctx, "u@example.com", "pw123", false, false)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	newUser, overwritten, err := svc.CreateOrOverwrite(ctx, "u@example.com", "pw456", true, true)
	if err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if !overwritten {
		t.Error("expected overwritten = true")
	}
	if newUser.ID == oldUser.ID {
		t.Error("expected a fresh ID after overwrite")
	}
	if !newUser.IsSuperuser {
		t.Error("expected superuser flag to take effect")
	}
	if len(repo.users) != 1 {
		t.Errorf("row count = %d, want 1", len(repo.users))
	}

	stored, _ := repo.FindByEmail(ctx, "u@example.com")
	if stored.HashedPassword != "hashed:pw456" {
		t.Errorf("stored hash = %q, want new password hash", stored.HashedPassword)
	}
}

func TestService_Remove_Succeeds(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, fakeHasher{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, "u@example.com", "pw123", false); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Remove(ctx, "u@example.com"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if len(repo.users) != 0 {
		t.Errorf("row count = %d, want 0", len(repo.users))
	}

	// 削除済みへの再実行はNotFound
	if err := svc.Remove(ctx, "u@example.com"); !isNotFound(err) {
		t.Errorf("second Remove err = %v, want NotFound", err)
	}
}

func TestService_Remove_NotFound_LeavesStoreUnchanged(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, fakeHasher{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, "keep@example.com", "pw123", false); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := svc.Remove(ctx, "ghost@example.com"); !isNotFound(err) {
		t.Errorf("err = %v, want NotFound", err)
	}
	if len(repo.users) != 1 {
		t.Errorf("row count = %d, want 1", len(repo.users))
	}
}

func TestService_List_LexicographicOrder(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, fakeHasher{})
	ctx := context.Background()

	for _, email := range []string{"c@example.com", "a@example.com", "b@example.com"} {
		if _, err := svc.Create(ctx, email, "pw123", false); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	emails, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	want := []string{"a@example.com", "b@example.com", "c@example.com"}
	if len(emails) != len(want) {
		t.Fatalf("len = %d, want %d", len(emails), len(want))
	}
	for i := range want {
		if emails[i] != want[i] {
			t.Errorf("emails[%d] = %q, want %q", i, emails[i], want[i])
		}
	}
}
