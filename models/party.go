package models

import (
	"sort"
	"time"
)

// Party types
const (
	PartyTypeClient = "client"
	PartyTypeLead   = "lead"
)

func IsValidPartyType(t string) bool {
	return t == PartyTypeClient || t == PartyTypeLead
}

// Party is either a client or a lead. Exactly one of Client and Lead is non-nil,
// matching PartyType.
type Party struct {
	PartyType string  `json:"party_type"`
	Client    *Client `json:"client,omitempty"`
	Lead      *Lead   `json:"lead,omitempty"`
}

func ClientParty(c *Client) Party {
	return Party{PartyType: PartyTypeClient, Client: c}
}

func LeadParty(l *Lead) Party {
	return Party{PartyType: PartyTypeLead, Lead: l}
}

func (p Party) IsClient() bool { return p.PartyType == PartyTypeClient && p.Client != nil }
func (p Party) IsLead() bool   { return p.PartyType == PartyTypeLead && p.Lead != nil }

func (p Party) ID() string {
	if p.IsClient() {
		return p.Client.ID
	}
	if p.IsLead() {
		return p.Lead.ID
	}
	return ""
}

func (p Party) WorkspaceID() string {
	if p.IsClient() {
		return p.Client.WorkspaceID
	}
	if p.IsLead() {
		return p.Lead.WorkspaceID
	}
	return ""
}

func (p Party) Name() string {
	if p.IsClient() {
		return p.Client.Name
	}
	if p.IsLead() {
		return p.Lead.Name
	}
	return ""
}

func (p Party) Email() string {
	if p.IsClient() {
		return p.Client.Email
	}
	if p.IsLead() {
		return p.Lead.Email
	}
	return ""
}

func (p Party) Phone() string {
	if p.IsClient() {
		return p.Client.Phone
	}
	if p.IsLead() {
		return p.Lead.Phone
	}
	return ""
}

func (p Party) AvatarURL() string {
	if p.IsClient() {
		return p.Client.AvatarURL
	}
	if p.IsLead() {
		return p.Lead.AvatarURL
	}
	return ""
}

// Status returns the client status or the lead status depending on the party type
func (p Party) Status() string {
	if p.IsClient() {
		return p.Client.Status
	}
	if p.IsLead() {
		return p.Lead.Status
	}
	return ""
}

func (p Party) OwnerID() *string {
	if p.IsClient() {
		return p.Client.OwnerID
	}
	if p.IsLead() {
		return p.Lead.OwnerID
	}
	return nil
}

func (p Party) Activity() []Activity {
	if p.IsClient() {
		return p.Client.Activity
	}
	if p.IsLead() {
		return p.Lead.Activity
	}
	return nil
}

func (p Party) Tasks() []Task {
	if p.IsClient() {
		return p.Client.Tasks
	}
	if p.IsLead() {
		return p.Lead.Tasks
	}
	return nil
}

// Timeline returns a copy of the activity sorted newest first
func (p Party) Timeline() []Activity {
	entries := append([]Activity(nil), p.Activity()...)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries
}

// PartyProfile is the flattened view rendered on the unified profile page
type PartyProfile struct {
	PartyType string     `json:"party_type"`
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone,omitempty"`
	AvatarURL string     `json:"avatar,omitempty"`
	Status    string     `json:"status"`
	OwnerID   *string    `json:"owner_id,omitempty"`
	Tasks     []Task     `json:"tasks"`
	Activity  []Activity `json:"activity"`
	CreatedAt time.Time  `json:"created_at"`

	Client *Client `json:"client,omitempty"`
	Lead   *Lead   `json:"lead,omitempty"`
}

// Profile flattens the party for rendering
func (p Party) Profile() PartyProfile {
	profile := PartyProfile{
		PartyType: p.PartyType,
		ID:        p.ID(),
		Name:      p.Name(),
		Email:     p.Email(),
		Phone:     p.Phone(),
		AvatarURL: p.AvatarURL(),
		Status:    p.Status(),
		OwnerID:   p.OwnerID(),
		Tasks:     p.Tasks(),
		Activity:  p.Timeline(),
	}
	if profile.Tasks == nil {
		profile.Tasks = []Task{}
	}
	if profile.Activity == nil {
		profile.Activity = []Activity{}
	}
	if p.IsClient() {
		profile.CreatedAt = p.Client.CreatedAt
		profile.Client = p.Client
	}
	if p.IsLead() {
		profile.CreatedAt = p.Lead.CreatedAt
		profile.Lead = p.Lead
	}
	return profile
}
