package mediaserver

import (
	"strconv"
	"time"

	"streamwarden/internal/services"
	"streamwarden/internal/session"
)

type sessionsResponse struct {
	MediaContainer struct {
		Size     int              `json:"size"`
		Metadata []sessionPayload `json:"Metadata"`
	} `json:"MediaContainer"`
}

type sessionPayload struct {
	SessionKey          string         `json:"sessionKey"`
	Title               string         `json:"title"`
	GrandparentTitle    string         `json:"grandparentTitle"`
	GrandparentKey      string         `json:"grandparentRatingKey"`
	Type                string         `json:"type"`
	LibrarySectionID    string         `json:"librarySectionID"`
	LibrarySectionTitle string         `json:"librarySectionTitle"`
	ViewOffset          int64          `json:"viewOffset"`
	Duration            int64          `json:"duration"`
	Session             streamPayload  `json:"Session"`
	Player              playerPayload  `json:"Player"`
	User                userPayload    `json:"User"`
	Media               []mediaPayload `json:"Media"`
	TranscodeSession    *transcodeInfo `json:"TranscodeSession"`
}

type streamPayload struct {
	ID        string `json:"id"`
	Bandwidth int    `json:"bandwidth"`
	Location  string `json:"location"`
	StartedAt int64  `json:"started"`
}

type playerPayload struct {
	Platform string `json:"platform"`
	Product  string `json:"product"`
	Title    string `json:"title"`
	State    string `json:"state"`
	Address  string `json:"address"`
	Local    bool   `json:"local"`
}

type userPayload struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type mediaPayload struct {
	VideoResolution string `json:"videoResolution"`
	Bitrate         int    `json:"bitrate"`
}

type transcodeInfo struct {
	VideoDecision string `json:"videoDecision"`
}

func evalError(message string) error {
	return services.Wrap(services.ErrEvaluation, "media-server", "parse session", message, nil)
}

// parseSession converts one raw listing entry to the typed snapshot model,
// failing on missing identity fields rather than surfacing a key error deep
// in rule logic.
func parseSession(item sessionPayload) (session.Session, error) {
	if item.Session.ID == "" {
		return session.Session{}, evalError("missing session id")
	}
	if item.User.ID == "" {
		return session.Session{}, evalError("session " + item.Session.ID + " missing user id")
	}

	state, err := parseState(item.Player.State)
	if err != nil {
		return session.Session{}, err
	}

	key := 0
	if item.SessionKey != "" {
		key, err = strconv.Atoi(item.SessionKey)
		if err != nil {
			return session.Session{}, evalError("session " + item.Session.ID + " has non-numeric session key")
		}
	}

	mediaType, err := parseMediaType(item.Type)
	if err != nil {
		return session.Session{}, err
	}

	decision := session.DecisionDirectPlay
	if item.TranscodeSession != nil {
		switch item.TranscodeSession.VideoDecision {
		case "transcode":
			decision = session.DecisionTranscode
		case "copy":
			decision = session.DecisionCopy
		}
	}

	bitrate := 0
	resolution := ""
	if len(item.Media) > 0 {
		bitrate = item.Media[0].Bitrate
		resolution = item.Media[0].VideoResolution
	}
	if bitrate == 0 {
		bitrate = item.Session.Bandwidth
	}

	var startedAt time.Time
	if item.Session.StartedAt > 0 {
		startedAt = time.Unix(item.Session.StartedAt, 0).UTC()
	}

	return session.Session{
		ID:           item.Session.ID,
		Key:          key,
		UserID:       item.User.ID,
		Username:     item.User.Title,
		IPAddress:    item.Player.Address,
		Platform:     item.Player.Platform,
		Player:       item.Player.Title,
		LocalNetwork: item.Player.Local || item.Session.Location == "lan",
		MediaTitle:   item.Title,
		MediaType:    mediaType,
		ShowTitle:    item.GrandparentTitle,
		ShowID:       item.GrandparentKey,
		LibraryID:    item.LibrarySectionID,
		LibraryName:  item.LibrarySectionTitle,
		Resolution:   resolution,
		State:        state,
		Decision:     decision,
		BitrateKbps:  bitrate,
		ViewOffsetMS: item.ViewOffset,
		DurationMS:   item.Duration,
		StartedAt:    startedAt,
	}, nil
}

func parseState(raw string) (session.State, error) {
	switch raw {
	case "playing":
		return session.StatePlaying, nil
	case "paused":
		return session.StatePaused, nil
	case "buffering":
		return session.StateBuffering, nil
	default:
		return "", evalError("unknown player state " + strconv.Quote(raw))
	}
}

func parseMediaType(raw string) (session.MediaType, error) {
	switch raw {
	case "movie":
		return session.MediaMovie, nil
	case "episode":
		return session.MediaEpisode, nil
	case "track":
		return session.MediaTrack, nil
	default:
		return "", evalError("unknown media type " + strconv.Quote(raw))
	}
}
