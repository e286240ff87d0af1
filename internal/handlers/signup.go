package handlers

import (
	"net/http"

	"clubhub/internal/models"
	"clubhub/internal/response"
	"clubhub/internal/storage"

	"github.com/gin-gonic/gin"
)

// SignupItem represents a single derived signup row: one assignment of a
// volunteer to a time slot. Recomputed on every request, never stored.
type SignupItem struct {
	OpportunityID    uint   `json:"opportunity_id"`
	OpportunityTitle string `json:"opportunity_title"`
	TimeSlotID       uint   `json:"time_slot_id"`
	Date             string `json:"date"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	VolunteerID      uint   `json:"volunteer_id"`
	Status           string `json:"status"`
}

// SignupSummary holds the aggregate counts shown on the dashboard.
type SignupSummary struct {
	TotalSignups        int `json:"total_signups"`
	UniqueVolunteers    int `json:"unique_volunteers"`
	ActiveOpportunities int `json:"active_opportunities"`
}

// BuildSignups flattens opportunities (with embedded slots and assignments)
// into one signup row per assignment. Pure function: never mutates its input.
// The status is carried from the assignment record, not hard-coded here.
func BuildSignups(opportunities []models.Opportunity) []SignupItem {
	signups := make([]SignupItem, 0)
	for _, opp := range opportunities {
		for _, slot := range opp.TimeSlots {
			for _, a := range slot.Assignments {
				signups = append(signups, SignupItem{
					OpportunityID:    opp.ID,
					OpportunityTitle: opp.Title,
					TimeSlotID:       slot.ID,
					Date:             slot.Date,
					StartTime:        slot.StartTime,
					EndTime:          slot.EndTime,
					VolunteerID:      a.VolunteerID,
					Status:           a.Status,
				})
			}
		}
	}
	return signups
}

// SummarizeSignups computes the dashboard counts from the same projection.
func SummarizeSignups(opportunities []models.Opportunity) SignupSummary {
	signups := BuildSignups(opportunities)

	uniqueVolunteers := make(map[uint]bool)
	for _, s := range signups {
		uniqueVolunteers[s.VolunteerID] = true
	}

	active := 0
	for _, opp := range opportunities {
		if opp.Status == models.OpportunityStatusOpen {
			active++
		}
	}

	return SignupSummary{
		TotalSignups:        len(signups),
		UniqueVolunteers:    len(uniqueVolunteers),
		ActiveOpportunities: active,
	}
}

func fetchClubOpportunities(clubID uint) ([]models.Opportunity, error) {
	var opportunities []models.Opportunity
	err := storage.DB.
		Preload("TimeSlots.Assignments").
		Where("club_id = ?", clubID).
		Order("id ASC").
		Find(&opportunities).Error
	return opportunities, err
}

// ListSignupsHandler godoc
// @Summary		Список записей волонтёров
// @Description	Плоская проекция всех назначений клуба: (возможность, слот, волонтёр)
// @Tags			signups
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"List of signup rows"
// @Failure		400	{object}	response.ErrorResponse		"Club not resolved (CLUB_NOT_RESOLVED)"
// @Failure		500	{object}	response.ErrorResponse		"Server error (DB_ERROR)"
// @Router			/api/signups [get]
func ListSignupsHandler(c *gin.Context) {
	clubID, ok := resolveClubID(c)
	if !ok {
		return
	}

	opportunities, err := fetchClubOpportunities(clubID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "Error fetching opportunities",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Ok(BuildSignups(opportunities)))
}

// GetSignupSummaryHandler godoc
// @Summary		Сводка по записям
// @Description	Итоговые счётчики: записи, уникальные волонтёры, открытые возможности
// @Tags			signups
// @Produce		json
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Summary counts"
// @Failure		400	{object}	response.ErrorResponse		"Club not resolved (CLUB_NOT_RESOLVED)"
// @Failure		500	{object}	response.ErrorResponse		"Server error (DB_ERROR)"
// @Router			/api/signups/summary [get]
func GetSignupSummaryHandler(c *gin.Context) {
	clubID, ok := resolveClubID(c)
	if !ok {
		return
	}

	opportunities, err := fetchClubOpportunities(clubID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse{
			Code:    "DB_ERROR",
			Error:   "Error fetching opportunities",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, response.Ok(SummarizeSignups(opportunities)))
}

// OpportunitySignupRow is a signup row with the volunteer profile resolved.
// An assignment whose volunteer record is missing is still rendered as a
// placeholder row instead of failing the whole listing.
type OpportunitySignupRow struct {
	TimeSlotID     uint   `json:"time_slot_id"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	VolunteerID    uint   `json:"volunteer_id"`
	VolunteerName  string `json:"volunteer_name"`
	VolunteerEmail string `json:"volunteer_email"`
	Status         string `json:"status"`
	Pending        bool   `json:"pending"` // true if the volunteer record did not resolve
}

// ListOpportunitySignupsHandler godoc
// @Summary		Записи по возможности
// @Description	Список назначений одной возможности с данными волонтёров
// @Tags			signups
// @Produce		json
// @Param			id	path		string	true	"ID возможности"
// @Security		BearerAuth
// @Success		200	{object}	response.SuccessResponse	"Signup rows for the opportunity"
// @Failure		404	{object}	response.ErrorResponse		"Opportunity not found (OPPORTUNITY_NOT_FOUND)"
// @Failure		500	{object}	response.ErrorResponse		"Server error (DB_ERROR)"
// @Router			/api/opportunities/{id}/signups [get]
func ListOpportunitySignupsHandler(c *gin.Context) {
	clubID, ok := resolveClubID(c)
	if !ok {
		return
	}

	opportunity, ok := loadClubOpportunity(c, clubID, true)
	if !ok {
		return
	}

	// Collect volunteer ids and load their profiles in one query.
	var volunteerIDs []uint
	for _, slot := range opportunity.TimeSlots {
		for _, a := range slot.Assignments {
			volunteerIDs = append(volunteerIDs, a.VolunteerID)
		}
	}

	volunteerMap := make(map[uint]models.Volunteer)
	if len(volunteerIDs) > 0 {
		var volunteers []models.Volunteer
		if err := storage.DB.Where("id IN ?", volunteerIDs).Find(&volunteers).Error; err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorResponse{
				Code:    "DB_ERROR",
				Error:   "Error fetching volunteer profiles",
				Details: err.Error(),
			})
			return
		}
		for _, v := range volunteers {
			volunteerMap[v.ID] = v
		}
	}

	rows := make([]OpportunitySignupRow, 0)
	for _, slot := range opportunity.TimeSlots {
		for _, a := range slot.Assignments {
			row := OpportunitySignupRow{
				TimeSlotID:  slot.ID,
				Date:        slot.Date,
				StartTime:   slot.StartTime,
				EndTime:     slot.EndTime,
				VolunteerID: a.VolunteerID,
				Status:      a.Status,
			}
			if v, exists := volunteerMap[a.VolunteerID]; exists {
				row.VolunteerName = v.Name
				row.VolunteerEmail = v.Email
			} else {
				row.VolunteerName = "—"
				row.Pending = true
			}
			rows = append(rows, row)
		}
	}

	c.JSON(http.StatusOK, response.Ok(rows))
}
