package models

// SSHTunnel holds the secure-channel credential for one Database record.
// DatabaseID is unique: a record owns at most one live tunnel, and the tunnel
// is created, updated and deleted only through the tunnel lifecycle service.
// Authentication is either password or private key (with optional passphrase).
type SSHTunnel struct {
	ID                 uint   `gorm:"primaryKey;column:id" json:"id"`
	DatabaseID         uint   `gorm:"column:database_id;unique" json:"database_id"`     // Owning Database record
	ServerAddress      string `gorm:"column:server_address" json:"server_address"`      // SSH bastion host
	ServerPort         int    `gorm:"column:server_port" json:"server_port"`            // SSH bastion port
	Username           string `gorm:"column:username" json:"username"`                  // SSH login user
	Password           string `gorm:"column:password" json:"-"`                         // Password auth secret
	PrivateKey         string `gorm:"column:private_key" json:"-"`                      // PEM private key auth secret
	PrivateKeyPassword string `gorm:"column:private_key_password" json:"-"`             // Passphrase for PrivateKey
}

// TableName specifies the static table name for GORM.
// Required to override GORM's default pluralization behavior.
func (SSHTunnel) TableName() string {
	return "ssh_tunnels"
}
