package api

import (
	"time"

	"dietcascade/portal-api/internal/analytics"
	"dietcascade/portal-api/internal/domain"
	"dietcascade/portal-api/internal/lifecycle"
	"dietcascade/portal-api/internal/repository"
	"dietcascade/portal-api/internal/service"
)

// UserResponse excludes sensitive info like password hash
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// PlanResponse is the plan record with wire-format dates.
type PlanResponse struct {
	ClientID      string              `json:"clientId"`
	PlanType      domain.PlanType     `json:"assignedPlanType"`
	PlanStartDate *string             `json:"planStartDate"`
	PlanEndDate   *string             `json:"planEndDate"`
	Status        domain.ClientStatus `json:"status"`
}

func MapPlanToResponse(p domain.PlanRecord) PlanResponse {
	return PlanResponse{
		ClientID:      p.ClientID.Hex(),
		PlanType:      p.PlanType,
		PlanStartDate: lifecycle.FormatDatePtr(p.StartDate),
		PlanEndDate:   lifecycle.FormatDatePtr(p.EndDate),
		Status:        p.Status,
	}
}

type ClientResponse struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	FullName     string    `json:"fullName"`
	Phone        string    `json:"phone,omitempty"`
	Instagram    string    `json:"instagram,omitempty"`
	InitialGoals string    `json:"initialGoals,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	PlanResponse
	Timeline *lifecycle.Timeline `json:"timeline,omitempty"`
}

func MapClientToResponse(c *domain.Client, timeline *lifecycle.Timeline) ClientResponse {
	return ClientResponse{
		ID:           c.ID.Hex(),
		UserID:       c.UserID.Hex(),
		FullName:     c.FullName,
		Phone:        c.Phone,
		Instagram:    c.Instagram,
		InitialGoals: c.InitialGoals,
		CreatedAt:    c.CreatedAt,
		PlanResponse: MapPlanToResponse(c.Plan()),
		Timeline:     timeline,
	}
}

type ProgressEntryResponse struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"clientId"`
	Date      string    `json:"date"`
	WeightKg  *float64  `json:"weight_kg"`
	ChestCm   *float64  `json:"chest_cm"`
	WaistCm   *float64  `json:"waist_cm"`
	HipsCm    *float64  `json:"hips_cm"`
	PhotoURL  *string   `json:"photo_url"`
	Notes     *string   `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func MapProgressToResponse(e *domain.ProgressEntry) ProgressEntryResponse {
	return ProgressEntryResponse{
		ID:        e.ID.Hex(),
		ClientID:  e.ClientID.Hex(),
		Date:      lifecycle.FormatDate(e.Date),
		WeightKg:  e.WeightKg,
		ChestCm:   e.ChestCm,
		WaistCm:   e.WaistCm,
		HipsCm:    e.HipsCm,
		PhotoURL:  optionalString(e.PhotoURL),
		Notes:     optionalString(e.Notes),
		CreatedAt: e.CreatedAt,
	}
}

func mapProgressList(entries []domain.ProgressEntry) []ProgressEntryResponse {
	out := make([]ProgressEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, MapProgressToResponse(&entries[i]))
	}
	return out
}

type DietPlanResponse struct {
	ID         string    `json:"id"`
	ClientID   string    `json:"clientId"`
	PlanName   string    `json:"planName"`
	FileURL    string    `json:"fileUrl"`
	Notes      *string   `json:"notes"`
	UploadedBy string    `json:"uploadedBy"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func MapDietPlanToResponse(p *domain.DietPlan) DietPlanResponse {
	return DietPlanResponse{
		ID:         p.ID.Hex(),
		ClientID:   p.ClientID.Hex(),
		PlanName:   p.PlanName,
		FileURL:    p.FileURL,
		Notes:      optionalString(p.Notes),
		UploadedBy: p.UploadedBy.Hex(),
		UploadedAt: p.UploadedAt,
	}
}

func mapDietPlanList(plans []domain.DietPlan) []DietPlanResponse {
	out := make([]DietPlanResponse, 0, len(plans))
	for i := range plans {
		out = append(out, MapDietPlanToResponse(&plans[i]))
	}
	return out
}

type ClientListResponse struct {
	Clients []ClientResponse        `json:"clients"`
	Counts  repository.ClientCounts `json:"counts"`
}

func MapDirectoryToResponse(dir *service.ClientDirectory) ClientListResponse {
	resp := ClientListResponse{Clients: make([]ClientResponse, 0, len(dir.Clients)), Counts: dir.Counts}
	for i := range dir.Clients {
		o := &dir.Clients[i]
		resp.Clients = append(resp.Clients, MapClientToResponse(&o.Client, &o.Timeline))
	}
	return resp
}

type HistoryResponse struct {
	Entries []ProgressEntryResponse `json:"entries"`
	Stats   analytics.Summary       `json:"stats"`
	Chart   analytics.Chart         `json:"chart"`
}

func MapHistoryToResponse(h *service.ProgressHistory) HistoryResponse {
	return HistoryResponse{Entries: mapProgressList(h.Entries), Stats: h.Stats, Chart: h.Chart}
}

type DashboardResponse struct {
	Client         ClientResponse         `json:"client"`
	LatestEntry    *ProgressEntryResponse `json:"latestEntry"`
	EntryCount     int64                  `json:"entryCount"`
	LatestDietPlan *DietPlanResponse      `json:"latestDietPlan"`
}

func MapDashboardToResponse(d *service.Dashboard) DashboardResponse {
	resp := DashboardResponse{
		Client:     MapClientToResponse(&d.Client, &d.Timeline),
		EntryCount: d.EntryCount,
	}
	if d.LatestEntry != nil {
		e := MapProgressToResponse(d.LatestEntry)
		resp.LatestEntry = &e
	}
	if d.LatestDietPlan != nil {
		p := MapDietPlanToResponse(d.LatestDietPlan)
		resp.LatestDietPlan = &p
	}
	return resp
}

type ClientDetailResponse struct {
	Client    ClientResponse          `json:"client"`
	DietPlans []DietPlanResponse      `json:"dietPlans"`
	Progress  []ProgressEntryResponse `json:"progress"`
	Stats     analytics.Summary       `json:"stats"`
}

func MapClientDetailToResponse(d *service.ClientDetail) ClientDetailResponse {
	return ClientDetailResponse{
		Client:    MapClientToResponse(&d.Client, &d.Timeline),
		DietPlans: mapDietPlanList(d.DietPlans),
		Progress:  mapProgressList(d.Progress),
		Stats:     d.Stats,
	}
}
