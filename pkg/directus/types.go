package directus

import (
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
)

// Item is an untyped item, used when no Go type describes a collection.
type Item map[string]any

// ItemMetadata is returned when a query asks for meta counts.
type ItemMetadata struct {
	TotalCount  *int `json:"total_count,omitempty"  yaml:"total_count,omitempty"`
	FilterCount *int `json:"filter_count,omitempty" yaml:"filter_count,omitempty"`
}

// ManyItems is the envelope for list responses.
type ManyItems[T any] struct {
	Data []T           `json:"data"           yaml:"data"`
	Meta *ItemMetadata `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// OneItem is the envelope for single item responses.
type OneItem[T any] struct {
	Data *T `json:"data" yaml:"data"`
}

// Collection describes a collection in the schema.
type Collection struct {
	Collection string         `json:"collection"       yaml:"collection"`
	Meta       map[string]any `json:"meta,omitempty"   yaml:"meta,omitempty"`
	Schema     map[string]any `json:"schema,omitempty" yaml:"schema,omitempty"`
	Fields     []Field        `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Field describes a field of a collection.
type Field struct {
	Collection string         `json:"collection,omitempty" yaml:"collection,omitempty"`
	Field      string         `json:"field,omitempty"      yaml:"field,omitempty"`
	Type       string         `json:"type,omitempty"       yaml:"type,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"       yaml:"meta,omitempty"`
	Schema     map[string]any `json:"schema,omitempty"     yaml:"schema,omitempty"`
}

// Relation describes a relation between two collections.
type Relation struct {
	Collection        string         `json:"collection,omitempty"         yaml:"collection,omitempty"`
	Field             string         `json:"field,omitempty"              yaml:"field,omitempty"`
	RelatedCollection string         `json:"related_collection,omitempty" yaml:"related_collection,omitempty"`
	Meta              map[string]any `json:"meta,omitempty"               yaml:"meta,omitempty"`
	Schema            map[string]any `json:"schema,omitempty"             yaml:"schema,omitempty"`
}

// File is an entry of directus_files.
type File struct {
	ID               string         `json:"id,omitempty"                yaml:"id,omitempty"`
	Storage          string         `json:"storage,omitempty"           yaml:"storage,omitempty"`
	FilenameDisk     string         `json:"filename_disk,omitempty"     yaml:"filename_disk,omitempty"`
	FilenameDownload string         `json:"filename_download,omitempty" yaml:"filename_download,omitempty"`
	Title            string         `json:"title,omitempty"             yaml:"title,omitempty"`
	Type             string         `json:"type,omitempty"              yaml:"type,omitempty"`
	Folder           *string        `json:"folder,omitempty"            yaml:"folder,omitempty"`
	UploadedBy       string         `json:"uploaded_by,omitempty"       yaml:"uploaded_by,omitempty"`
	UploadedOn       *time.Time     `json:"uploaded_on,omitempty"       yaml:"uploaded_on,omitempty"`
	Filesize         json.Number    `json:"filesize,omitempty"          yaml:"filesize,omitempty"`
	Width            *int           `json:"width,omitempty"             yaml:"width,omitempty"`
	Height           *int           `json:"height,omitempty"            yaml:"height,omitempty"`
	Description      string         `json:"description,omitempty"       yaml:"description,omitempty"`
	Tags             []string       `json:"tags,omitempty"              yaml:"tags,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"          yaml:"metadata,omitempty"`
}

// Folder is an entry of directus_folders.
type Folder struct {
	ID     string  `json:"id,omitempty"     yaml:"id,omitempty"`
	Name   string  `json:"name,omitempty"   yaml:"name,omitempty"`
	Parent *string `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// User is an entry of directus_users.
type User struct {
	ID          string     `json:"id,omitempty"          yaml:"id,omitempty"`
	FirstName   string     `json:"first_name,omitempty"  yaml:"first_name,omitempty"`
	LastName    string     `json:"last_name,omitempty"   yaml:"last_name,omitempty"`
	Email       string     `json:"email,omitempty"       yaml:"email,omitempty"`
	Password    string     `json:"password,omitempty"    yaml:"-"`
	Location    string     `json:"location,omitempty"    yaml:"location,omitempty"`
	Title       string     `json:"title,omitempty"       yaml:"title,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty"        yaml:"tags,omitempty"`
	Avatar      *string    `json:"avatar,omitempty"      yaml:"avatar,omitempty"`
	Language    string     `json:"language,omitempty"    yaml:"language,omitempty"`
	TFASecret   *string    `json:"tfa_secret,omitempty"  yaml:"-"`
	Status      string     `json:"status,omitempty"      yaml:"status,omitempty"`
	Role        any        `json:"role,omitempty"        yaml:"role,omitempty"`
	Token       *string    `json:"token,omitempty"       yaml:"-"`
	LastAccess  *time.Time `json:"last_access,omitempty" yaml:"last_access,omitempty"`
	LastPage    string     `json:"last_page,omitempty"   yaml:"last_page,omitempty"`
}

// Role is an entry of directus_roles.
type Role struct {
	ID          string `json:"id,omitempty"           yaml:"id,omitempty"`
	Name        string `json:"name,omitempty"         yaml:"name,omitempty"`
	Icon        string `json:"icon,omitempty"         yaml:"icon,omitempty"`
	Description string `json:"description,omitempty"  yaml:"description,omitempty"`
	IPAccess    any    `json:"ip_access,omitempty"    yaml:"ip_access,omitempty"`
	EnforceTFA  *bool  `json:"enforce_tfa,omitempty"  yaml:"enforce_tfa,omitempty"`
	AdminAccess *bool  `json:"admin_access,omitempty" yaml:"admin_access,omitempty"`
	AppAccess   *bool  `json:"app_access,omitempty"   yaml:"app_access,omitempty"`
}

// Permission is an entry of directus_permissions.
type Permission struct {
	ID          json.Number    `json:"id,omitempty"          yaml:"id,omitempty"`
	Role        *string        `json:"role,omitempty"        yaml:"role,omitempty"`
	Collection  string         `json:"collection,omitempty"  yaml:"collection,omitempty"`
	Action      string         `json:"action,omitempty"      yaml:"action,omitempty"`
	Permissions map[string]any `json:"permissions,omitempty" yaml:"permissions,omitempty"`
	Validation  map[string]any `json:"validation,omitempty"  yaml:"validation,omitempty"`
	Presets     map[string]any `json:"presets,omitempty"     yaml:"presets,omitempty"`
	Fields      []string       `json:"fields,omitempty"      yaml:"fields,omitempty"`
}

// Preset is an entry of directus_presets (bookmarks and saved layouts).
type Preset struct {
	ID            json.Number    `json:"id,omitempty"             yaml:"id,omitempty"`
	Bookmark      *string        `json:"bookmark,omitempty"       yaml:"bookmark,omitempty"`
	User          *string        `json:"user,omitempty"           yaml:"user,omitempty"`
	Role          *string        `json:"role,omitempty"           yaml:"role,omitempty"`
	Collection    string         `json:"collection,omitempty"     yaml:"collection,omitempty"`
	Search        *string        `json:"search,omitempty"         yaml:"search,omitempty"`
	Filter        map[string]any `json:"filter,omitempty"         yaml:"filter,omitempty"`
	Layout        string         `json:"layout,omitempty"         yaml:"layout,omitempty"`
	LayoutQuery   map[string]any `json:"layout_query,omitempty"   yaml:"layout_query,omitempty"`
	LayoutOptions map[string]any `json:"layout_options,omitempty" yaml:"layout_options,omitempty"`
}

// Revision is an entry of directus_revisions.
type Revision struct {
	ID         json.Number    `json:"id,omitempty"         yaml:"id,omitempty"`
	Activity   any            `json:"activity,omitempty"   yaml:"activity,omitempty"`
	Collection string         `json:"collection,omitempty" yaml:"collection,omitempty"`
	Item       string         `json:"item,omitempty"       yaml:"item,omitempty"`
	Data       map[string]any `json:"data,omitempty"       yaml:"data,omitempty"`
	Delta      map[string]any `json:"delta,omitempty"      yaml:"delta,omitempty"`
	Parent     *json.Number   `json:"parent,omitempty"     yaml:"parent,omitempty"`
}

// Activity is an entry of directus_activity.
type Activity struct {
	ID         json.Number `json:"id,omitempty"         yaml:"id,omitempty"`
	Action     string      `json:"action,omitempty"     yaml:"action,omitempty"`
	User       any         `json:"user,omitempty"       yaml:"user,omitempty"`
	Timestamp  *time.Time  `json:"timestamp,omitempty"  yaml:"timestamp,omitempty"`
	IP         string      `json:"ip,omitempty"         yaml:"ip,omitempty"`
	UserAgent  string      `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	Collection string      `json:"collection,omitempty" yaml:"collection,omitempty"`
	Item       string      `json:"item,omitempty"       yaml:"item,omitempty"`
	Comment    *string     `json:"comment,omitempty"    yaml:"comment,omitempty"`
	Revisions  []any       `json:"revisions,omitempty"  yaml:"revisions,omitempty"`
}

// Comment is the payload of a new activity comment.
type Comment struct {
	Collection string `json:"collection"`
	Item       string `json:"item"`
	Comment    string `json:"comment"`
}

// Settings is the directus_settings singleton.
type Settings struct {
	ID                    json.Number `json:"id,omitempty"                      yaml:"id,omitempty"`
	ProjectName           string      `json:"project_name,omitempty"            yaml:"project_name,omitempty"`
	ProjectURL            *string     `json:"project_url,omitempty"             yaml:"project_url,omitempty"`
	ProjectColor          *string     `json:"project_color,omitempty"           yaml:"project_color,omitempty"`
	ProjectLogo           *string     `json:"project_logo,omitempty"            yaml:"project_logo,omitempty"`
	PublicForeground      *string     `json:"public_foreground,omitempty"       yaml:"public_foreground,omitempty"`
	PublicBackground      *string     `json:"public_background,omitempty"       yaml:"public_background,omitempty"`
	PublicNote            *string     `json:"public_note,omitempty"             yaml:"public_note,omitempty"`
	AuthLoginAttempts     *int        `json:"auth_login_attempts,omitempty"     yaml:"auth_login_attempts,omitempty"`
	AuthPasswordPolicy    *string     `json:"auth_password_policy,omitempty"    yaml:"auth_password_policy,omitempty"`
	StorageAssetTransform string      `json:"storage_asset_transform,omitempty" yaml:"storage_asset_transform,omitempty"`
	CustomCSS             *string     `json:"custom_css,omitempty"              yaml:"custom_css,omitempty"`
	ModuleBar             []any       `json:"module_bar,omitempty"              yaml:"module_bar,omitempty"`
}

// ServerInfo is returned by /server/info.
type ServerInfo struct {
	Project   map[string]any `json:"project,omitempty"   yaml:"project,omitempty"`
	Directus  map[string]any `json:"directus,omitempty"  yaml:"directus,omitempty"`
	Node      map[string]any `json:"node,omitempty"      yaml:"node,omitempty"`
	OS        map[string]any `json:"os,omitempty"        yaml:"os,omitempty"`
	RateLimit any            `json:"rateLimit,omitempty" yaml:"rate_limit,omitempty"`
	Flows     map[string]any `json:"flows,omitempty"     yaml:"flows,omitempty"`
}

// ServerHealth is returned by /server/health.
type ServerHealth struct {
	Status    string         `json:"status"              yaml:"status"`
	ReleaseID string         `json:"releaseId,omitempty" yaml:"release_id,omitempty"`
	ServiceID string         `json:"serviceId,omitempty" yaml:"service_id,omitempty"`
	Checks    map[string]any `json:"checks,omitempty"    yaml:"checks,omitempty"`
}

// TFASecret is returned when two-factor authentication is generated.
type TFASecret struct {
	Secret     string `json:"secret"      yaml:"secret"`
	OTPAuthURL string `json:"otpauth_url" yaml:"otpauth_url"`
}

// FileImport asks the server to fetch a file from a URL.
type FileImport struct {
	URL  string         `json:"url"`
	Data map[string]any `json:"data,omitempty"`
}

// AuthResult is the token set issued by login and refresh.
type AuthResult struct {
	AccessToken  string    `json:"access_token"            yaml:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"              yaml:"expires_at"`
}

// LoginRequest holds login credentials.
type LoginRequest struct {
	Email    string
	Password string
	// OTP is the one-time password when two-factor authentication is on.
	OTP string
}

// AuthState is the state of the authentication lifecycle.
type AuthState string

const (
	AuthStateNoSession     AuthState = "no_session"
	AuthStateAuthenticated AuthState = "authenticated"
	AuthStateExpired       AuthState = "expired"
	AuthStateStatic        AuthState = "static"
)

// GraphQLRequest is the body of a GraphQL call.
type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// GraphQLResponse is the result of a GraphQL call.
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []APIError      `json:"errors,omitempty"`
}

// Get reads a value from Data by gjson path, e.g. "posts.0.title".
func (r *GraphQLResponse) Get(path string) gjson.Result {
	return gjson.GetBytes(r.Data, path)
}

// Decode unmarshals Data into v.
func (r *GraphQLResponse) Decode(v any) error {
	if len(r.Data) == 0 {
		return ErrEmptyResponse
	}

	return json.Unmarshal(r.Data, v)
}
