// Package tms is the typed SDK for the rahtash-tms back-office API. It
// binds the generic resource machinery (client, query cache, list
// controller, mutation form, delete confirmation) to the concrete
// resources the dashboard manages.
package tms

import "time"

// ShipmentStatus enumerates shipment lifecycle states.
type ShipmentStatus int

const (
	ShipmentPending    ShipmentStatus = 1
	ShipmentInProgress ShipmentStatus = 2
	ShipmentCompleted  ShipmentStatus = 3
	ShipmentCancelled  ShipmentStatus = 4
)

func (s ShipmentStatus) String() string {
	switch s {
	case ShipmentPending:
		return "Pending"
	case ShipmentInProgress:
		return "In Progress"
	case ShipmentCompleted:
		return "Completed"
	case ShipmentCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// PortStatus enumerates port availability.
type PortStatus int

const (
	PortActive   PortStatus = 1
	PortInactive PortStatus = 2
)

func (s PortStatus) String() string {
	switch s {
	case PortActive:
		return "Active"
	case PortInactive:
		return "Inactive"
	default:
		return "Unknown"
	}
}

// Shipment is the central resource of the back office.
type Shipment struct {
	ID                    int            `json:"id"`
	BillOfLadingNumberID  int            `json:"bill_of_lading_number_id"`
	ContainsDangerousGood bool           `json:"contains_dangerous_good"`
	DateOfLoading         string         `json:"date_of_loading,omitempty"`
	Note                  string         `json:"note,omitempty"`
	Status                ShipmentStatus `json:"status"`
	CreatedAt             time.Time      `json:"created_at"`
}

// ShipmentContainer is one container attached to a shipment.
type ShipmentContainer struct {
	ID              int       `json:"id"`
	ContainerNumber string    `json:"container_number"`
	Type            int       `json:"type"`
	Shipment        int       `json:"shipment"`
	CreatedAt       time.Time `json:"created_at"`
}

// ShipmentStep is one stage in a shipment's trace.
type ShipmentStep struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Order     int       `json:"order"`
	Shipment  int       `json:"shipment"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

// ShipmentPort is a port of loading or discharge.
type ShipmentPort struct {
	ID        int        `json:"id"`
	Title     string     `json:"title"`
	Country   string     `json:"country"`
	Status    PortStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// Document is an uploaded shipment document.
type Document struct {
	ID        int       `json:"id"`
	File      string    `json:"file"`
	Type      int       `json:"type"`
	Verifier  int       `json:"verifier,omitempty"`
	Shipment  int       `json:"shipment"`
	CreatedAt time.Time `json:"created_at"`
}

// DocumentType is reference data classifying documents.
type DocumentType struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Driver is a registered truck driver.
type Driver struct {
	ID          int       `json:"id"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number"`
	Company     int       `json:"company,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Company is a partner organization.
type Company struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Category  int       `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// CompanyCategory is reference data classifying companies.
type CompanyCategory struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Address is a stored street address.
type Address struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Detail    string    `json:"detail,omitempty"`
	Company   int       `json:"company,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// User is a staff account.
type User struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}
