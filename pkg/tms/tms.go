package tms

import (
	"github.com/rs/zerolog"

	"github.com/TheMinarctic/rahtash-tms-admin/pkg/client"
)

// Canonical endpoint bases. Earlier iterations of the dashboard mixed a
// locale-prefixed convention with a doubled-plural one; this SDK uses a
// single convention throughout.
const (
	shipmentBase        = "/api/v1/shipment"
	containerBase       = "/api/v1/shipment/container"
	stepBase            = "/api/v1/shipment/step"
	portBase            = "/api/v1/shipment/port"
	documentBase        = "/api/v1/shipment/document"
	documentTypeBase    = "/api/v1/shipment/document/type"
	driverBase          = "/api/v1/driver"
	companyBase         = "/api/v1/company"
	companyCategoryBase = "/api/v1/company/category"
	addressBase         = "/api/v1/address"
	userBase            = "/api/v1/user"
)

// Client bundles one service per managed resource, all sharing a single
// HTTP client and therefore a single credential source and rate limit.
type Client struct {
	http   *client.Client
	logger zerolog.Logger

	Shipments         *Resource[Shipment]
	Containers        *Resource[ShipmentContainer]
	Steps             *Resource[ShipmentStep]
	Ports             *Resource[ShipmentPort]
	Documents         *Resource[Document]
	DocumentTypes     *Resource[DocumentType]
	Drivers           *Resource[Driver]
	Companies         *Resource[Company]
	CompanyCategories *Resource[CompanyCategory]
	Addresses         *Resource[Address]
	Users             *Resource[User]
}

// New creates the SDK facade on top of a configured HTTP client.
func New(c *client.Client, logger zerolog.Logger) *Client {
	return &Client{
		http:              c,
		logger:            logger.With().Str("component", "tms").Logger(),
		Shipments:         NewResource[Shipment](c, "shipment", shipmentBase, ShipmentSchema(), logger),
		Containers:        NewResource[ShipmentContainer](c, "container", containerBase, ContainerSchema(), logger),
		Steps:             NewResource[ShipmentStep](c, "step", stepBase, StepSchema(), logger),
		Ports:             NewResource[ShipmentPort](c, "port", portBase, PortSchema(), logger),
		Documents:         NewResource[Document](c, "document", documentBase, DocumentSchema(), logger),
		DocumentTypes:     NewResource[DocumentType](c, "document_type", documentTypeBase, DocumentTypeSchema(), logger),
		Drivers:           NewResource[Driver](c, "driver", driverBase, DriverSchema(), logger),
		Companies:         NewResource[Company](c, "company", companyBase, CompanySchema(), logger),
		CompanyCategories: NewResource[CompanyCategory](c, "company_category", companyCategoryBase, CompanyCategorySchema(), logger),
		Addresses:         NewResource[Address](c, "address", addressBase, AddressSchema(), logger),
		Users:             NewResource[User](c, "user", userBase, UserSchema(), logger),
	}
}
