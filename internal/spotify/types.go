package spotify

// Wire types for the Spotify Web API. Field names and shapes follow the API
// JSON structure; only the fields the client actually consumes are declared.

// Page represents an offset-based paginated response.
type Page[T any] struct {
	Href     string  `json:"href"`
	Items    []T     `json:"items"`
	Limit    int     `json:"limit"`
	Next     *string `json:"next"`
	Offset   int     `json:"offset"`
	Previous *string `json:"previous"`
	Total    int     `json:"total"`
}

// Image represents cover art at one resolution.
type Image struct {
	URL    string `json:"url"`
	Height *int   `json:"height,omitempty"`
	Width  *int   `json:"width,omitempty"`
}

// Artist is the simplified artist object embedded in tracks and search results.
type Artist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// Album is the simplified album object.
type Album struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []Artist `json:"artists"`
	Images  []Image  `json:"images"`
	URI     string   `json:"uri"`
}

// Track is the full track object.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
	DurationMS int      `json:"duration_ms"`
	Explicit   bool     `json:"explicit"`
	Popularity int      `json:"popularity"`
	URI        string   `json:"uri"`
}

// PlaylistTrack wraps a track inside a playlist page. Track can be null for
// entries the API can no longer resolve (removed or region-locked).
type PlaylistTrack struct {
	AddedAt string `json:"added_at"`
	Track   *Track `json:"track"`
}

// SavedTrack wraps a track inside the user's saved-library page.
type SavedTrack struct {
	AddedAt string `json:"added_at"`
	Track   Track  `json:"track"`
}

// Playlist is the simplified playlist object.
type Playlist struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Collaborative bool   `json:"collaborative"`
	Owner         struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"owner"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
	URI string `json:"uri"`
}

// Device is a playback target registered with the account.
type Device struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	IsActive      bool   `json:"is_active"`
	VolumePercent *int   `json:"volume_percent"`
}

// DeviceList is the /me/player/devices envelope.
type DeviceList struct {
	Devices []Device `json:"devices"`
}

// PlaybackContext is the current-playback object from /me/player.
type PlaybackContext struct {
	Device       Device `json:"device"`
	RepeatState  string `json:"repeat_state"`
	ShuffleState bool   `json:"shuffle_state"`
	ProgressMS   *int   `json:"progress_ms"`
	IsPlaying    bool   `json:"is_playing"`
	Item         *Track `json:"item"`
}

// User is the current-user profile from /me.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Country     string `json:"country"`
	Product     string `json:"product"`
}

// TokenResponse is the accounts-service token grant payload.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
}

// ArtistName renders the track's artist line the way the UI displays it.
func (t Track) ArtistName() string {
	switch len(t.Artists) {
	case 0:
		return ""
	case 1:
		return t.Artists[0].Name
	default:
		name := t.Artists[0].Name
		for _, a := range t.Artists[1:] {
			name += ", " + a.Name
		}
		return name
	}
}
