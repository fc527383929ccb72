package dto

import "encoding/json"

// SSHTunnelPayload carries the requested tunnel credential fields.
// Either Password or PrivateKey must be present; validated by the tunnel
// lifecycle service before any write.
type SSHTunnelPayload struct {
	ServerAddress      string `json:"server_address" validate:"required"`
	ServerPort         int    `json:"server_port" validate:"required,gt=0,lte=65535"`
	Username           string `json:"username" validate:"required"`
	Password           string `json:"password"`
	PrivateKey         string `json:"private_key"`
	PrivateKeyPassword string `json:"private_key_password"`
}

// OptionalTunnel distinguishes the three states of the ssh_tunnel changeset
// field: absent (leave the tunnel alone), explicit null (remove the tunnel)
// and present (create or update with the payload). Set is false only when the
// field never appeared in the request body.
type OptionalTunnel struct {
	Set   bool
	Value *SSHTunnelPayload
}

// UnmarshalJSON records that the field appeared at all, then decodes the
// payload; a JSON null leaves Value nil.
func (o *OptionalTunnel) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var payload SSHTunnelPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	o.Value = &payload
	return nil
}

// MarshalJSON renders the payload, or null when the field requests removal.
func (o OptionalTunnel) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// DatabaseUpdate is the sparse changeset applied to a database connection
// record. Nil pointer fields are left untouched on the record.
type DatabaseUpdate struct {
	DatabaseName         *string        `json:"database_name,omitempty"`
	ConnectionURI        *string        `json:"connection_uri,omitempty"`
	MaskedEncryptedExtra string         `json:"masked_encrypted_extra,omitempty"` // Secret blob with sensitive values masked
	SSHTunnel            OptionalTunnel `json:"ssh_tunnel,omitempty"`
}
