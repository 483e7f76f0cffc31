package models

import "time"

type VisitPurpose string

const (
	VisitPurposeCase     VisitPurpose = "case"
	VisitPurposePersonal VisitPurpose = "personal"
)

// Visit is a point-in-time record of a visitor calling on an officer. The
// officer fields are a snapshot captured at creation and never updated when
// the officer record changes later.
type Visit struct {
	ID                 string
	VisitorName        string
	Phone              string
	Address            string
	Purpose            VisitPurpose
	OfficerID          string
	OfficerName        string
	OfficerDesignation string
	OfficerDepartment  string
	OfficerUnit        string
	OfficerStatus      Status
	PhotoKey           *string
	VisitTime          time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
