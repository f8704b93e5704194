package model

// KVPair is process-wide durable key-value storage. Holds the auth token,
// the cached credential hash, and the last-sync timestamp under well-known
// keys.
type KVPair struct {
	Key   string `gorm:"primaryKey"`
	Value string `gorm:"not null"`
}

func (KVPair) TableName() string { return "kv" }

// Well-known KV keys.
const (
	KeyAuthToken   = "auth_token"
	KeyAuthUser    = "auth_user"
	KeyCredentials = "auth_credentials"
	KeyLastSync    = "last_sync"
)
