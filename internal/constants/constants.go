package constants

import "time"

const (
	DefaultPollInterval = 4 * time.Second
	DefaultRecentPicks  = 20
	DefaultSlots        = "GKP:2,DEF:5,MID:5,FWD:3"
	DefaultLeagueName   = "Draft League"
)

const (
	DefaultFantasyBaseURL = "https://fantasy.premierleague.com"
	DefaultDraftBaseURL   = "https://draft.premierleague.com"
	DefaultMirrorBaseURL  = "https://r.jina.ai/"
)

var DefaultCORSProxies = []string{
	"https://cors.isomorphic-git.org/",
	"https://corsproxy.io/?",
	"https://thingproxy.freeboard.io/fetch/",
}

const (
	ExternalAPITimeout    = 10 * time.Second
	RelayTimeout          = 15 * time.Second
	WebsocketWriteTimeout = 3 * time.Second
	ReadHeaderTimeout     = 5 * time.Second
)

const (
	FetchMaxConnsPerHost   = 32
	FetchMaxIdleConnTime   = 30 * time.Second
	FetchMaxResponseBodyMB = 16
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	MsgLeagueNotFound       = "League not found. Did you enter the right League ID?"
	MsgDirectoryUnavailable = "Waiting for FPL player directory..."
	MsgRetrying             = "Error loading data. Will retry..."
	MsgInvalidLeagueID      = "Please enter a valid numeric league id"
)
