package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	graphql "github.com/graph-gophers/graphql-go"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"postboard/internal/auth"
	"postboard/internal/cache"
	"postboard/internal/domain"
	"postboard/internal/repo"
	"postboard/internal/service"
)

type memUserRepo struct {
	mu      sync.Mutex
	byID    map[string]domain.User
	byEmail map[string]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byID: map[string]domain.User{}, byEmail: map[string]domain.User{}}
}

func (f *memUserRepo) Create(_ context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.User{}, &pgconn.PgError{Code: "23505"}
	}
	u.CreatedAt = time.Now()
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *memUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (f *memUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (f *memUserRepo) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byEmail[email]
	return ok, nil
}

type memPostRepo struct {
	mu    sync.Mutex
	posts map[string]domain.Post
	clock time.Time
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: map[string]domain.Post{}, clock: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *memPostRepo) Create(_ context.Context, p domain.Post) (domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(time.Second)
	p.CreatedAt = f.clock
	f.posts[p.ID] = p
	return p, nil
}

func (f *memPostRepo) GetByID(_ context.Context, id string) (domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return domain.Post{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *memPostRepo) ListByUser(_ context.Context, userID string) ([]domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []domain.Post
	for _, p := range f.posts {
		if p.UserID == userID {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (f *memPostRepo) List(_ context.Context, params repo.ListParams) ([]domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []domain.Post
	for _, p := range f.posts {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if params.Offset > 0 && int(params.Offset) < len(list) {
		list = list[params.Offset:]
	}
	if params.Limit > 0 && int(params.Limit) < len(list) {
		list = list[:params.Limit]
	}
	return list, nil
}

func (f *memPostRepo) UpdateContent(_ context.Context, id, content string) (domain.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	if !ok {
		return domain.Post{}, pgx.ErrNoRows
	}
	f.clock = f.clock.Add(time.Second)
	now := f.clock
	p.Content = content
	p.UpdatedAt = &now
	f.posts[id] = p
	return p, nil
}

func (f *memPostRepo) Delete(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.posts[id]; !ok {
		return false, nil
	}
	delete(f.posts, id)
	return true, nil
}

type testEnv struct {
	schema *graphql.Schema
	users  *service.UserService
	issuer *auth.TokenIssuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	mem, err := cache.NewMemoryCache(5 * time.Minute)
	require.NoError(t, err)
	t.Cleanup(mem.Close)

	issuer := auth.NewTokenIssuer("test-secret", 24*time.Hour, nil)
	users := service.NewUserService(newMemUserRepo(), issuer, zap.NewNop())
	posts := service.NewPostService(newMemPostRepo(), mem, zap.NewNop())
	return &testEnv{
		schema: NewSchema(NewResolver(users, posts)),
		users:  users,
		issuer: issuer,
	}
}

func (e *testEnv) registeredUser(t *testing.T) (domain.User, context.Context) {
	t.Helper()
	u, err := e.users.Register(context.Background(), service.RegisterInput{
		Username: "alice",
		Email:    fmt.Sprintf("alice%d@example.com", time.Now().UnixNano()),
		Password: "secret1",
	})
	require.NoError(t, err)
	ctx := auth.WithIdentity(context.Background(), auth.Identity{
		UserID: u.ID, Email: u.Email, Role: u.Role,
	})
	return u, ctx
}

func TestSchemaParses(t *testing.T) {
	newTestEnv(t)
}

func TestRegisterValidationErrorShape(t *testing.T) {
	env := newTestEnv(t)

	resp := env.schema.Exec(context.Background(),
		`mutation { register(input: {username: "ab", email: "bad", password: "123"}) { id } }`, "", nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Validation failed.", resp.Errors[0].Message)

	fields, ok := resp.Errors[0].Extensions["validationErrors"].(map[string][]string)
	require.True(t, ok, "validationErrors extension missing or wrong type")
	assert.Contains(t, fields, "username")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")

	// Exact wire shape: errors[].message + errors[].extensions.validationErrors.
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	var wire struct {
		Errors []struct {
			Message    string `json:"message"`
			Extensions struct {
				ValidationErrors map[string][]string `json:"validationErrors"`
			} `json:"extensions"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(b, &wire))
	require.Len(t, wire.Errors, 1)
	assert.Equal(t, "Validation failed.", wire.Errors[0].Message)
	assert.Len(t, wire.Errors[0].Extensions.ValidationErrors, 3)
}

func TestLoginFailureShape(t *testing.T) {
	env := newTestEnv(t)

	resp := env.schema.Exec(context.Background(),
		`mutation { login(input: {email: "nobody@example.com", password: "wrong"}) }`, "", nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Unexpected error occurred.", resp.Errors[0].Message)
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Errors[0].Extensions["errorType"])
	assert.Equal(t, "invalid email or password", resp.Errors[0].Extensions["details"])
}

func TestCreatePostRequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)

	resp := env.schema.Exec(context.Background(),
		`mutation { createPost(content: "hello") { id } }`, "", nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Unexpected error occurred.", resp.Errors[0].Message)
	assert.Equal(t, "UNAUTHENTICATED", resp.Errors[0].Extensions["errorType"])
}

func TestCreatePostRejectsUnknownRole(t *testing.T) {
	env := newTestEnv(t)
	ctx := auth.WithIdentity(context.Background(), auth.Identity{
		UserID: "u1", Email: "a@b.com", Role: domain.Role("Ghost"),
	})

	resp := env.schema.Exec(ctx, `mutation { createPost(content: "hello") { id } }`, "", nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "FORBIDDEN", resp.Errors[0].Extensions["errorType"])
}

func TestCreateAndReadUserPosts(t *testing.T) {
	env := newTestEnv(t)
	u, ctx := env.registeredUser(t)

	resp := env.schema.Exec(ctx, `mutation { createPost(content: "hello world") { id content } }`, "", nil)
	require.Empty(t, resp.Errors)

	var created struct {
		CreatePost struct {
			ID      string `json:"id"`
			Content string `json:"content"`
		} `json:"createPost"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.NotEmpty(t, created.CreatePost.ID)
	assert.Equal(t, "hello world", created.CreatePost.Content)

	resp = env.schema.Exec(ctx,
		`query($id: ID!) { userPosts(userID: $id) { id content author { username } } }`, "",
		map[string]interface{}{"id": u.ID})
	require.Empty(t, resp.Errors)

	var listed struct {
		UserPosts []struct {
			ID      string `json:"id"`
			Content string `json:"content"`
			Author  struct {
				Username string `json:"username"`
			} `json:"author"`
		} `json:"userPosts"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &listed))
	require.Len(t, listed.UserPosts, 1)
	assert.Equal(t, created.CreatePost.ID, listed.UserPosts[0].ID)
	assert.Equal(t, "alice", listed.UserPosts[0].Author.Username)
}

func TestUpdateUnknownPostErrorShape(t *testing.T) {
	env := newTestEnv(t)
	_, ctx := env.registeredUser(t)

	resp := env.schema.Exec(ctx,
		`mutation { updatePost(id: "00000000-0000-0000-0000-000000000000", content: "x") { id } }`, "", nil)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "Unexpected error occurred.", resp.Errors[0].Message)
	assert.Equal(t, "NOT_FOUND", resp.Errors[0].Extensions["errorType"])
	assert.Equal(t, "post not found", resp.Errors[0].Extensions["details"])
}

func TestDeletePostReturnsSuccessFlag(t *testing.T) {
	env := newTestEnv(t)
	_, ctx := env.registeredUser(t)

	resp := env.schema.Exec(ctx, `mutation { createPost(content: "doomed") { id } }`, "", nil)
	require.Empty(t, resp.Errors)
	var created struct {
		CreatePost struct {
			ID string `json:"id"`
		} `json:"createPost"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &created))

	resp = env.schema.Exec(ctx,
		`mutation($id: ID!) { deletePost(id: $id) }`, "",
		map[string]interface{}{"id": created.CreatePost.ID})
	require.Empty(t, resp.Errors)

	var deleted struct {
		DeletePost bool `json:"deletePost"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &deleted))
	assert.True(t, deleted.DeletePost)
}

func TestMeReturnsCaller(t *testing.T) {
	env := newTestEnv(t)
	u, ctx := env.registeredUser(t)

	resp := env.schema.Exec(ctx, `query { me { id username role } }`, "", nil)
	require.Empty(t, resp.Errors)

	var me struct {
		Me struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"me"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &me))
	assert.Equal(t, u.ID, me.Me.ID)
	assert.Equal(t, "alice", me.Me.Username)
	assert.Equal(t, "User", me.Me.Role)
}

func TestLoginRoundtripThroughSchema(t *testing.T) {
	env := newTestEnv(t)

	u, err := env.users.Register(context.Background(), service.RegisterInput{
		Username: "bob", Email: "bob@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	resp := env.schema.Exec(context.Background(),
		`mutation { login(input: {email: "bob@example.com", password: "secret1"}) }`, "", nil)
	require.Empty(t, resp.Errors)

	var out struct {
		Login string `json:"login"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &out))

	id, err := env.issuer.Validate(out.Login)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.UserID)
}
