package domain

// AuthPayload is the claim set of an API token
type AuthPayload struct {
	Subject    string   `json:"sub"`
	Permission []string `json:"permission"`
	ExpiresAt  int64    `json:"exp"`
}

const PermissionConvert = "convert"

func (p AuthPayload) HasPermission(permission string) bool {
	for _, granted := range p.Permission {
		if granted == permission {
			return true
		}
	}
	return false
}
