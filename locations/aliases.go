// Copyright 2025 The Locamap Authors
// SPDX-License-Identifier: Apache-2.0

package locations

// field identifies a canonical Location field.
type field int

const (
	fieldLatitude field = iota
	fieldLongitude
	fieldName
	fieldBusinessName
	fieldType
	fieldAddress
	fieldRegion
	fieldContactPhone
	fieldEmail
	fieldWebsite
	fieldSerial
	fieldRating
	fieldFeedback
)

// aliases lists, in precedence order, the keys a canonical field may be
// served under. The first present, non-empty key wins.
var aliases = map[field][]string{
	fieldLatitude:     {"latitude", "Latitude", "lat", "Lat", "LATITUDE"},
	fieldLongitude:    {"longitude", "Longitude", "lng", "Lng", "lon", "Lon", "long", "LONGITUDE"},
	fieldName:         {"name", "Name", "NAME", "title", "Title"},
	fieldBusinessName: {"businessName", "BusinessName", "business_name", "Business Name", "company", "Company"},
	fieldType:         {"type", "Type", "category", "Category"},
	fieldAddress:      {"address", "Address", "fullAddress", "full_address"},
	fieldRegion:       {"region", "Region", "state", "State", "county", "County"},
	fieldContactPhone: {"contactPhone", "ContactPhone", "contact_phone", "phone", "Phone", "contact", "Contact"},
	fieldEmail:        {"email", "Email", "contactEmail", "contact_email"},
	fieldWebsite:      {"website", "Website", "url", "URL"},
	fieldSerial:       {"serial", "Serial", "serialId", "SerialId", "serialID", "serial_id", "id", "ID", "Id"},
	fieldRating:       {"rating", "Rating", "review", "Review"},
	fieldFeedback:     {"feedback", "Feedback", "feedbackText", "feedback_text"},
}
