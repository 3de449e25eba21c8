package conversation

import "strings"

// FallbackName is shown for an identity without a display name.
const FallbackName = "No name"

// Identity is the signed-in user, used only for display.
type Identity struct {
	Email       string `toml:"email"`
	DisplayName string `toml:"display_name"`
}

// Present reports whether an identity is signed in.
func (id Identity) Present() bool {
	return strings.TrimSpace(id.Email) != ""
}

// Name returns the display name, or FallbackName when unset.
func (id Identity) Name() string {
	if name := strings.TrimSpace(id.DisplayName); name != "" {
		return name
	}
	return FallbackName
}

// Initial returns the first letter of the display name for avatars.
func (id Identity) Initial() string {
	for _, r := range id.Name() {
		return strings.ToUpper(string(r))
	}
	return ""
}
