package tms

import "github.com/TheMinarctic/rahtash-tms-admin/pkg/form"

// Form schemas for each resource. These mirror the backend's validation
// surface: every create/update goes through one of these before any
// request is issued. A document schema carries a file field, so document
// submissions are always multipart; everything else submits JSON.

// ShipmentSchema validates shipment upserts. The MSDS sheet is required
// only while the dangerous-goods toggle is on.
func ShipmentSchema() form.Schema {
	return form.Schema{Fields: []form.Field{
		{Name: "bill_of_lading_number_id", Label: "Bill of Lading Number", Kind: form.KindNumber, Required: true, Rules: "gt=0"},
		{Name: "date_of_loading", Label: "Date of Loading", Kind: form.KindDate},
		{Name: "contains_dangerous_good", Label: "Contains Dangerous Goods", Kind: form.KindBool},
		{Name: "note", Label: "Note", Kind: form.KindString, Rules: "max=500"},
		{Name: "status", Label: "Status", Kind: form.KindNumber, Rules: "oneof=1 2 3 4"},
	}}
}

// ShipmentFilesSchema validates the shipment document bundle uploaded
// during creation: bill of lading, invoice and packing list are always
// required, the MSDS sheet only for dangerous goods.
func ShipmentFilesSchema() form.Schema {
	return form.Schema{Fields: []form.Field{
		{Name: "bl_file", Label: "Bill of Lading File", Kind: form.KindFile, Required: true},
		{Name: "invoice_file", Label: "Invoice File", Kind: form.KindFile, Required: true},
		{Name: "packing_list_file", Label: "Packing List File", Kind: form.KindFile, Required: true},
		{Name: "contains_dangerous_good", Label: "Contains Dangerous Goods", Kind: form.KindBool},
		{Name: "msds_file", Label: "MSDS File", Kind: form.KindFile, RequiredWhen: "contains_dangerous_good"},
	}}
}

// CustomFileSchema validates an ad-hoc document upload: the title names
// a new document type and the file is the document itself, required
// together.
func CustomFileSchema() form.Schema {
	return form.Schema{Fields: []form.Field{
		{Name: "title", Label: "Title", Kind: form.KindString, Required: true},
		{Name: "file", Label: "File", Kind: form.KindFile, Required: true},
	}}
}

// ContainerSchema validates shipment container upserts.
func ContainerSchema() form.Schema {
	return form.Schema{Fields: []form.Field{
		{Name: "container_number", Label: "Container Number", Kind: form.KindString, Required: true},
		{Name: "type", Label: "Type", Kind: form.KindNumber, Required: true},
		{Name: "shipment", Label: "Shipment", Kind: form.KindReference, Required: true},
	}}
}

// StepSchema validates shipment step upserts.
func StepSchema() form.Schema {
	return form.Schema{Fields: []form.Field{
		{Name: "title", Label: "Title", Kind: form.KindString, Required: true},
		{Name: "order", Label: "Order", Kind: form.KindNumber, Rules: "gte=0"},
		{Name: "shipment", Label: "Shipment", Kind: form.KindReference, Required: true},
		{Name: "done", Label: "Done", Kind: form.KindBool},
	}}
}

// PortSchema validates port upserts.
func PortSchema() form.Schema {
	return form.Schema{Fields: []form.Field{
		{Name: "title", Label: "Title", Kind: form.KindString, Required: true},
		{Name: "country", Label: "Country", Kind: form.KindString, Required: true},
		{Name: "status", Label: "Status", Kind: form.KindNumber, Rules: "oneof=1 2"},
	}}
}

// DocumentSchema validates document uploads. The file field forces
// multipart encoding for every document submission.
func DocumentSchema() form.Schema {
	return form.Schema{Fields: []form.Field{
		{Name: "file", Label: "File", Kind: form.KindFile},
		{Name: "type", Label: "Type", Kind: form.KindReference, Required: true},
		{Name: "verifier", Label: "Verifier", Kind: form.KindReference},
		{Name: "shipment", Label: "Shipment", Kind: form.KindReference, Required: true},
	}}
}

// DocumentTypeSchema validates document type upserts.
func DocumentTypeSchema() form.Schema {
	return form.Schema{Fields: []form.Field{
		{Name: "title", Label: "Title", Kind: form.KindString, Required: true},
	}}
}

// DriverSchema validates driver upserts.
func DriverSchema() form.Schema {
	return form.Schema{Fields: []form.Field{
		{Name: "full_name", Label: "Full Name", Kind: form.KindString, Required: true},
		{Name: "phone_number", Label: "Phone Number", Kind: form.KindString, Required: true, Rules: "min=7"},
		{Name: "company", Label: "Company", Kind: form.KindReference},
	}}
}

// CompanySchema validates company upserts.
func CompanySchema() form.Schema {
	return form.Schema{Fields: []form.Field{
		{Name: "title", Label: "Title", Kind: form.KindString, Required: true},
		{Name: "category", Label: "Category", Kind: form.KindReference},
	}}
}

// CompanyCategorySchema validates company category upserts.
func CompanyCategorySchema() form.Schema {
	return form.Schema{Fields: []form.Field{
		{Name: "title", Label: "Title", Kind: form.KindString, Required: true},
	}}
}

// AddressSchema validates address upserts.
func AddressSchema() form.Schema {
	return form.Schema{Fields: []form.Field{
		{Name: "title", Label: "Title", Kind: form.KindString, Required: true},
		{Name: "detail", Label: "Detail", Kind: form.KindString},
		{Name: "company", Label: "Company", Kind: form.KindReference},
	}}
}

// UserSchema validates staff account upserts.
func UserSchema() form.Schema {
	return form.Schema{Fields: []form.Field{
		{Name: "email", Label: "Email", Kind: form.KindString, Required: true, Rules: "email"},
		{Name: "full_name", Label: "Full Name", Kind: form.KindString},
		{Name: "is_active", Label: "Active", Kind: form.KindBool},
	}}
}
