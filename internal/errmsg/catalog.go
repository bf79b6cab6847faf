package errmsg

import "golang.org/x/text/language"

// Key identifies a user-facing message independent of locale.
type Key string

const (
	KeyInvalidCredentials Key = "invalid_credentials"
	KeyEmailNotConfirmed  Key = "email_not_confirmed"
	KeyUserExists         Key = "user_exists"
	KeyWeakPassword       Key = "weak_password"
	KeySessionExpired     Key = "session_expired"
	KeyAuthRequired       Key = "auth_required"
	KeyRateLimited        Key = "rate_limited"
	KeyNetwork            Key = "network"
	KeyTimeout            Key = "timeout"
	KeyDuplicate          Key = "duplicate"
	KeyForeignKey         Key = "foreign_key"
	KeyPermissionDenied   Key = "permission_denied"
	KeyAccessDenied       Key = "access_denied"
	KeyNotFound           Key = "not_found"
	KeyInvalidInput       Key = "invalid_input"
	KeyTooLong            Key = "too_long"
	KeyConfigMissing      Key = "config_missing"
	KeyInvalidAPIKey      Key = "invalid_api_key"

	KeyAuthFailed       Key = "auth_failed"
	KeyConnectionFailed Key = "connection_failed"
	KeyConfigInvalid    Key = "config_invalid"
	KeyDatabaseFailed   Key = "database_failed"
	KeyFetchFailed      Key = "fetch_failed"
	KeyCreateFailed     Key = "create_failed"
	KeyUpdateFailed     Key = "update_failed"
	KeyDeleteFailed     Key = "delete_failed"
	KeyUnknown          Key = "unknown"
)

// rawMessages maps known raw message text to a key. It is a slice so that
// the substring pass is deterministic: earlier entries win.
var rawMessages = []struct {
	raw string
	key Key
}{
	{"Invalid login credentials", KeyInvalidCredentials},
	{"Email not confirmed", KeyEmailNotConfirmed},
	{"User already registered", KeyUserExists},
	{"Password should be at least 6 characters", KeyWeakPassword},
	{"JWT expired", KeySessionExpired},
	{"invalid JWT", KeySessionExpired},
	{"Auth session missing!", KeyAuthRequired},
	{"Email rate limit exceeded", KeyRateLimited},
	{"too many requests", KeyRateLimited},
	{"Failed to fetch", KeyNetwork},
	{"NetworkError when attempting to fetch resource.", KeyNetwork},
	{"connection refused", KeyNetwork},
	{"no such host", KeyNetwork},
	{"timeout", KeyTimeout},
	{"duplicate key value violates unique constraint", KeyDuplicate},
	{"violates foreign key constraint", KeyForeignKey},
	{"new row violates row-level security policy", KeyPermissionDenied},
	{"permission denied", KeyPermissionDenied},
	{"access denied", KeyAccessDenied},
	{"not found", KeyNotFound},
	{"JSON object requested, multiple (or no) rows returned", KeyNotFound},
	{"validation failed", KeyInvalidInput},
	{"invalid input syntax", KeyInvalidInput},
	{"violates check constraint", KeyInvalidInput},
	{"value too long", KeyTooLong},
	{"Invalid API key", KeyInvalidAPIKey},
	{"missing configuration", KeyConfigMissing},
}

// contextFallback is the message used when nothing in rawMessages matches.
var contextFallback = map[Context]Key{
	ContextAuth:       KeyAuthFailed,
	ContextConnection: KeyConnectionFailed,
	ContextConfig:     KeyConfigInvalid,
	ContextDatabase:   KeyDatabaseFailed,
	ContextFetch:      KeyFetchFailed,
	ContextCreate:     KeyCreateFailed,
	ContextUpdate:     KeyUpdateFailed,
	ContextDelete:     KeyDeleteFailed,
}

var catalogs = map[language.Tag]map[Key]string{
	language.Korean: {
		KeyInvalidCredentials: "이메일 또는 비밀번호가 올바르지 않습니다.",
		KeyEmailNotConfirmed:  "이메일 인증이 완료되지 않았습니다. 메일함을 확인해 주세요.",
		KeyUserExists:         "이미 가입된 이메일입니다.",
		KeyWeakPassword:       "비밀번호는 6자 이상이어야 합니다.",
		KeySessionExpired:     "로그인 세션이 만료되었습니다. 다시 로그인해 주세요.",
		KeyAuthRequired:       "로그인이 필요합니다.",
		KeyRateLimited:        "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요.",
		KeyNetwork:            "네트워크 연결을 확인해 주세요.",
		KeyTimeout:            "요청 시간이 초과되었습니다. 다시 시도해 주세요.",
		KeyDuplicate:          "이미 존재하는 항목입니다.",
		KeyForeignKey:         "연결된 데이터가 없어 처리할 수 없습니다.",
		KeyPermissionDenied:   "이 작업을 수행할 권한이 없습니다.",
		KeyAccessDenied:       "이 여행에 접근할 권한이 없습니다.",
		KeyNotFound:           "요청한 항목을 찾을 수 없습니다.",
		KeyInvalidInput:       "입력값을 확인해 주세요.",
		KeyTooLong:            "입력값이 너무 깁니다.",
		KeyConfigMissing:      "서버 설정이 올바르지 않습니다. 관리자에게 문의해 주세요.",
		KeyInvalidAPIKey:      "서비스 인증 정보가 올바르지 않습니다.",
		KeyAuthFailed:         "인증 중 오류가 발생했습니다.",
		KeyConnectionFailed:   "서버에 연결할 수 없습니다.",
		KeyConfigInvalid:      "설정 오류가 발생했습니다.",
		KeyDatabaseFailed:     "데이터 처리 중 오류가 발생했습니다.",
		KeyFetchFailed:        "데이터를 불러오지 못했습니다.",
		KeyCreateFailed:       "생성에 실패했습니다.",
		KeyUpdateFailed:       "수정에 실패했습니다.",
		KeyDeleteFailed:       "삭제에 실패했습니다.",
		KeyUnknown:            "알 수 없는 오류가 발생했습니다.",
	},
	language.English: {
		KeyInvalidCredentials: "The email or password is incorrect.",
		KeyEmailNotConfirmed:  "Your email is not confirmed yet. Please check your inbox.",
		KeyUserExists:         "This email is already registered.",
		KeyWeakPassword:       "Passwords must be at least 6 characters.",
		KeySessionExpired:     "Your session has expired. Please sign in again.",
		KeyAuthRequired:       "Please sign in to continue.",
		KeyRateLimited:        "Too many requests. Please try again shortly.",
		KeyNetwork:            "Please check your network connection.",
		KeyTimeout:            "The request timed out. Please try again.",
		KeyDuplicate:          "This item already exists.",
		KeyForeignKey:         "The related item no longer exists.",
		KeyPermissionDenied:   "You do not have permission to do that.",
		KeyAccessDenied:       "You do not have access to this trip.",
		KeyNotFound:           "The requested item could not be found.",
		KeyInvalidInput:       "Please check your input.",
		KeyTooLong:            "The input is too long.",
		KeyConfigMissing:      "The server is misconfigured. Please contact an administrator.",
		KeyInvalidAPIKey:      "The service credentials are invalid.",
		KeyAuthFailed:         "Something went wrong while signing in.",
		KeyConnectionFailed:   "Could not reach the server.",
		KeyConfigInvalid:      "A configuration error occurred.",
		KeyDatabaseFailed:     "Something went wrong while saving data.",
		KeyFetchFailed:        "Could not load the data.",
		KeyCreateFailed:       "Could not create the item.",
		KeyUpdateFailed:       "Could not update the item.",
		KeyDeleteFailed:       "Could not delete the item.",
		KeyUnknown:            "An unknown error occurred.",
	},
}
