package poller

import "errors"

var ErrInvalidLeagueID = errors.New("league id must be numeric")
