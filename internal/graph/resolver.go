package graph

import (
	"context"

	graphql "github.com/graph-gophers/graphql-go"

	"postboard/internal/apperr"
	"postboard/internal/domain"
	"postboard/internal/repo"
	"postboard/internal/service"
)

// Resolver is the root resolver for both Query and Mutation.
type Resolver struct {
	users *service.UserService
	posts *service.PostService
}

// NewResolver returns the root resolver over the given services.
func NewResolver(users *service.UserService, posts *service.PostService) *Resolver {
	return &Resolver{users: users, posts: posts}
}

// NewSchema parses the SDL against the resolver. Panics on any mismatch
// between schema fields and resolver methods.
func NewSchema(r *Resolver) *graphql.Schema {
	return graphql.MustParseSchema(Schema, r)
}

type registerInput struct {
	Username string
	Email    string
	Password string
}

type loginInput struct {
	Email    string
	Password string
}

// Register creates a new account. Runs unauthenticated.
func (r *Resolver) Register(ctx context.Context, args struct{ Input registerInput }) (*UserResolver, error) {
	u, err := r.users.Register(ctx, service.RegisterInput{
		Username: args.Input.Username,
		Email:    args.Input.Email,
		Password: args.Input.Password,
	})
	if err != nil {
		return nil, apperr.Normalize(err)
	}
	return &UserResolver{u: u, root: r}, nil
}

// Login verifies credentials and returns a session token. Runs
// unauthenticated.
func (r *Resolver) Login(ctx context.Context, args struct{ Input loginInput }) (string, error) {
	token, err := r.users.Login(ctx, service.LoginInput{
		Email:    args.Input.Email,
		Password: args.Input.Password,
	})
	if err != nil {
		return "", apperr.Normalize(err)
	}
	return token, nil
}

// Me returns the authenticated caller's account.
func (r *Resolver) Me(ctx context.Context) (*UserResolver, error) {
	id, err := requireRole(ctx, opMe)
	if err != nil {
		return nil, apperr.Normalize(err)
	}
	u, err := r.users.GetByID(ctx, id.UserID)
	if err != nil {
		return nil, apperr.Normalize(err)
	}
	return &UserResolver{u: u, root: r}, nil
}

// UserPosts returns a user's posts newest first, read through the cache.
func (r *Resolver) UserPosts(ctx context.Context, args struct{ UserID graphql.ID }) ([]*PostResolver, error) {
	if _, err := requireRole(ctx, opUserPosts); err != nil {
		return nil, apperr.Normalize(err)
	}
	posts, err := r.posts.GetUserPosts(ctx, string(args.UserID))
	if err != nil {
		return nil, apperr.Normalize(err)
	}
	return r.postResolvers(posts), nil
}

// Posts returns posts across all users with paging and content search.
func (r *Resolver) Posts(ctx context.Context, args struct {
	First  *int32
	Offset *int32
	Search *string
}) ([]*PostResolver, error) {
	if _, err := requireRole(ctx, opPosts); err != nil {
		return nil, apperr.Normalize(err)
	}
	params := repo.ListParams{}
	if args.First != nil {
		params.Limit = *args.First
	}
	if args.Offset != nil {
		params.Offset = *args.Offset
	}
	if args.Search != nil {
		params.Search = *args.Search
	}
	posts, err := r.posts.List(ctx, params)
	if err != nil {
		return nil, apperr.Normalize(err)
	}
	return r.postResolvers(posts), nil
}

// CreatePost persists a post owned by the caller.
func (r *Resolver) CreatePost(ctx context.Context, args struct{ Content string }) (*PostResolver, error) {
	id, err := requireRole(ctx, opCreatePost)
	if err != nil {
		return nil, apperr.Normalize(err)
	}
	p, err := r.posts.Create(ctx, id.UserID, args.Content)
	if err != nil {
		return nil, apperr.Normalize(err)
	}
	return &PostResolver{p: p, root: r}, nil
}

// UpdatePost replaces a post's content.
func (r *Resolver) UpdatePost(ctx context.Context, args struct {
	ID      graphql.ID
	Content string
}) (*PostResolver, error) {
	if _, err := requireRole(ctx, opUpdatePost); err != nil {
		return nil, apperr.Normalize(err)
	}
	p, err := r.posts.Update(ctx, string(args.ID), args.Content)
	if err != nil {
		return nil, apperr.Normalize(err)
	}
	return &PostResolver{p: p, root: r}, nil
}

// DeletePost removes a post and reports success.
func (r *Resolver) DeletePost(ctx context.Context, args struct{ ID graphql.ID }) (bool, error) {
	if _, err := requireRole(ctx, opDeletePost); err != nil {
		return false, apperr.Normalize(err)
	}
	ok, err := r.posts.Delete(ctx, string(args.ID))
	if err != nil {
		return false, apperr.Normalize(err)
	}
	return ok, nil
}

func (r *Resolver) postResolvers(posts []domain.Post) []*PostResolver {
	out := make([]*PostResolver, len(posts))
	for i := range posts {
		out[i] = &PostResolver{p: posts[i], root: r}
	}
	return out
}

// UserResolver resolves the User type.
type UserResolver struct {
	u    domain.User
	root *Resolver
}

func (r *UserResolver) ID() graphql.ID          { return graphql.ID(r.u.ID) }
func (r *UserResolver) Username() string        { return r.u.Username }
func (r *UserResolver) Email() string           { return r.u.Email }
func (r *UserResolver) Role() string            { return string(r.u.Role) }
func (r *UserResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.u.CreatedAt} }

// Posts resolves the user's posts through the cached read path.
func (r *UserResolver) Posts(ctx context.Context) ([]*PostResolver, error) {
	posts, err := r.root.posts.GetUserPosts(ctx, r.u.ID)
	if err != nil {
		return nil, apperr.Normalize(err)
	}
	return r.root.postResolvers(posts), nil
}

// PostResolver resolves the Post type.
type PostResolver struct {
	p    domain.Post
	root *Resolver
}

func (r *PostResolver) ID() graphql.ID          { return graphql.ID(r.p.ID) }
func (r *PostResolver) Content() string         { return r.p.Content }
func (r *PostResolver) CreatedAt() graphql.Time { return graphql.Time{Time: r.p.CreatedAt} }

func (r *PostResolver) UpdatedAt() *graphql.Time {
	if r.p.UpdatedAt == nil {
		return nil
	}
	return &graphql.Time{Time: *r.p.UpdatedAt}
}

// Author resolves the owning user.
func (r *PostResolver) Author(ctx context.Context) (*UserResolver, error) {
	u, err := r.root.users.GetByID(ctx, r.p.UserID)
	if err != nil {
		return nil, apperr.Normalize(err)
	}
	return &UserResolver{u: u, root: r.root}, nil
}
