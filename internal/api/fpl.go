package api

import "context"

type BootstrapResponse struct {
	Elements     []Element     `json:"elements"`
	ElementTypes []ElementType `json:"element_types"`
	Teams        []Team        `json:"teams"`
}

type Element struct {
	ID          int    `json:"id"`
	WebName     string `json:"web_name"`
	ElementType int    `json:"element_type"`
	TeamCode    int    `json:"team_code"`
}

type ElementType struct {
	ID              int    `json:"id"`
	PluralNameShort string `json:"plural_name_short"`
}

type Team struct {
	Code      int    `json:"code"`
	ShortName string `json:"short_name"`
	Name      string `json:"name"`
}

type LeagueDetailsResponse struct {
	League        League        `json:"league"`
	LeagueEntries []LeagueEntry `json:"league_entries"`
}

type League struct {
	Name    string `json:"name"`
	DraftDT string `json:"draft_dt"`
}

type LeagueEntry struct {
	ID              int    `json:"id"`
	EntryID         *int   `json:"entry_id"`
	EntryName       string `json:"entry_name"`
	PlayerFirstName string `json:"player_first_name"`
	PlayerLastName  string `json:"player_last_name"`
}

type DraftChoicesResponse struct {
	Choices       []Choice        `json:"choices"`
	ElementStatus []ElementStatus `json:"element_status"`
}

type Choice struct {
	Element    int    `json:"element"`
	Entry      int    `json:"entry"`
	Index      *int   `json:"index"`
	ChoiceTime string `json:"choice_time"`
}

type ElementStatus struct {
	Element int    `json:"element"`
	Owner   *int   `json:"owner"`
	Status  string `json:"status"`
}

func (c *Client) GetBootstrap(ctx context.Context) (*BootstrapResponse, error) {
	return Fetch[BootstrapResponse](ctx, c, BootstrapPath)
}

func (c *Client) GetLeagueDetails(ctx context.Context, leagueID string) (*LeagueDetailsResponse, error) {
	return Fetch[LeagueDetailsResponse](ctx, c, LeagueDetailsPath(leagueID))
}

func (c *Client) GetDraftChoices(ctx context.Context, leagueID string) (*DraftChoicesResponse, error) {
	return Fetch[DraftChoicesResponse](ctx, c, DraftChoicesPath(leagueID))
}
