package directus

import (
	"context"
	"io"
	"net/url"
)

// Transport sends requests to a Directus instance. Request interceptors run
// in order before dispatch; failures surface as *NetworkError or *HTTPError.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
	Send(ctx context.Context, method, path string, body any, query url.Values) (*Response, error)
	BaseURL() string
	Interceptors() *InterceptorChain
}

// Auth manages the session lifecycle on top of a Transport and a Storage.
type Auth interface {
	Login(ctx context.Context, credentials LoginRequest) (*AuthResult, error)
	// Refresh exchanges the refresh token for a new token set.
	Refresh(ctx context.Context) (*AuthResult, error)
	// RefreshIfExpired refreshes only when the access token is within the
	// refresh margin of its expiry. Concurrent callers share one refresh.
	RefreshIfExpired(ctx context.Context) error
	Logout(ctx context.Context) error
	// Static validates token and uses it as a non-expiring access token.
	Static(ctx context.Context, token string) error
	Token(ctx context.Context) (string, error)
	State(ctx context.Context) (AuthState, error)
	RequestPasswordReset(ctx context.Context, email, resetURL string) error
	ResetPassword(ctx context.Context, token, password string) error
}

// ItemsClient performs CRUD on one collection.
type ItemsClient[T any] interface {
	ReadOne(ctx context.Context, id string, query *Query) (*T, error)
	ReadMany(ctx context.Context, ids []string, query *Query) (*ManyItems[T], error)
	ReadByQuery(ctx context.Context, query *Query) (*ManyItems[T], error)
	CreateOne(ctx context.Context, item *T, query *Query) (*T, error)
	CreateMany(ctx context.Context, items []T, query *Query) (*ManyItems[T], error)
	// UpdateOne sends patch verbatim as the request body.
	UpdateOne(ctx context.Context, id string, patch any, query *Query) (*T, error)
	UpdateMany(ctx context.Context, ids []string, patch any, query *Query) (*ManyItems[T], error)
	UpdateByQuery(ctx context.Context, updateQuery *Query, patch any, query *Query) (*ManyItems[T], error)
	DeleteOne(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
}

// SingletonClient reads and updates a single-item collection.
type SingletonClient[T any] interface {
	Read(ctx context.Context, query *Query) (*T, error)
	Update(ctx context.Context, patch any, query *Query) (*T, error)
}

// ActivityClient reads the activity log and manages comments.
type ActivityClient interface {
	ItemsClient[Activity]
	CreateComment(ctx context.Context, comment *Comment) (*Activity, error)
	UpdateComment(ctx context.Context, id, comment string) (*Activity, error)
	DeleteComment(ctx context.Context, id string) error
}

// CollectionsClient manages collections.
type CollectionsClient interface {
	ReadOne(ctx context.Context, collection string) (*Collection, error)
	ReadAll(ctx context.Context) ([]Collection, error)
	CreateOne(ctx context.Context, collection *Collection) (*Collection, error)
	CreateMany(ctx context.Context, collections []Collection) ([]Collection, error)
	UpdateOne(ctx context.Context, collection string, patch any) (*Collection, error)
	DeleteOne(ctx context.Context, collection string) error
}

// FieldsClient manages the fields of collections.
type FieldsClient interface {
	ReadOne(ctx context.Context, collection, field string) (*Field, error)
	ReadMany(ctx context.Context, collection string) ([]Field, error)
	ReadAll(ctx context.Context) ([]Field, error)
	CreateOne(ctx context.Context, collection string, field *Field) (*Field, error)
	UpdateOne(ctx context.Context, collection, field string, patch any) (*Field, error)
	DeleteOne(ctx context.Context, collection, field string) error
}

// RelationsClient manages relations.
type RelationsClient interface {
	ReadOne(ctx context.Context, collection, field string) (*Relation, error)
	ReadMany(ctx context.Context, collection string) ([]Relation, error)
	ReadAll(ctx context.Context) ([]Relation, error)
	CreateOne(ctx context.Context, relation *Relation) (*Relation, error)
	UpdateOne(ctx context.Context, collection, field string, patch any) (*Relation, error)
	DeleteOne(ctx context.Context, collection, field string) error
}

// FileUpload describes a multipart file upload.
type FileUpload struct {
	Filename    string
	ContentType string
	Content     io.Reader
	// Fields are extra form fields (title, folder, ...) sent before the file.
	Fields map[string]string
}

// FilesClient manages files.
type FilesClient interface {
	ItemsClient[File]
	Import(ctx context.Context, file *FileImport) (*File, error)
	Upload(ctx context.Context, upload *FileUpload) (*File, error)
}

// UsersClient manages users, invitations and the current user.
type UsersClient interface {
	ItemsClient[User]
	Invites() UserInvitesClient
	Me() UserMeClient
}

// UserInvitesClient sends and accepts invitations.
type UserInvitesClient interface {
	Send(ctx context.Context, emails []string, role, inviteURL string) error
	Accept(ctx context.Context, token, password string) error
}

// UserMeClient reads and updates the authenticated user.
type UserMeClient interface {
	Read(ctx context.Context, query *Query) (*User, error)
	Update(ctx context.Context, patch any, query *Query) (*User, error)
	TFA() UserTFAClient
}

// UserTFAClient manages two-factor authentication for the current user.
type UserTFAClient interface {
	Generate(ctx context.Context, password string) (*TFASecret, error)
	Enable(ctx context.Context, secret, otp string) error
	Disable(ctx context.Context, otp string) error
}

// ServerClient reads server information.
type ServerClient interface {
	Ping(ctx context.Context) (string, error)
	Info(ctx context.Context) (*ServerInfo, error)
	Health(ctx context.Context) (*ServerHealth, error)
	OAS(ctx context.Context) (map[string]any, error)
}

// UtilsClient exposes the utility endpoints.
type UtilsClient interface {
	RandomString(ctx context.Context, length int) (string, error)
	GenerateHash(ctx context.Context, value string) (string, error)
	VerifyHash(ctx context.Context, value, hash string) (bool, error)
	Sort(ctx context.Context, collection, item, to string) error
	Revert(ctx context.Context, revision string) error
}

// GraphQLClient sends GraphQL operations.
type GraphQLClient interface {
	Items(ctx context.Context, query string, variables map[string]any) (*GraphQLResponse, error)
	System(ctx context.Context, query string, variables map[string]any) (*GraphQLResponse, error)
}
