package auditdb

import (
	"context"

	"fieldaudit/internal/session"
	"fieldaudit/internal/sqlitedb"
	"fieldaudit/internal/timefmt"
)

// UploadPayload is the audit document POSTed to the sync backend.
type UploadPayload struct {
	ID               string             `json:"id"`
	StoreID          int                `json:"storeId"`
	AuditStartedAt   string             `json:"auditStartedAt"`
	AuditEndedAt     string             `json:"auditEndedAt"`
	LatitudeAtStart  *float64           `json:"latitudeAtStart"`
	LongitudeAtStart *float64           `json:"longitudeAtStart"`
	LatitudeAtEnd    *float64           `json:"latitudeAtEnd"`
	LongitudeAtEnd   *float64           `json:"longitudeAtEnd"`
	User             UploadUser         `json:"user"`
	Scans            []UploadScan       `json:"scans"`
	Reports          []UploadReport     `json:"reports"`
	SKUConditions    []UploadConditions `json:"skuConditions"`
	Notes            string             `json:"notes"`
	StoreNote        string             `json:"audit_store_note"`
}

// UploadUser identifies the auditor within the payload.
type UploadUser struct {
	UserID   int `json:"userId"`
	ClientID int `json:"clientId"`
}

// UploadScan is the wire form of a scan.
type UploadScan struct {
	ScanID          string   `json:"scanId"`
	CreatedAt       string   `json:"createdAt"`
	UpdatedAt       string   `json:"updatedAt"`
	ChainXProductID int      `json:"chainXProductId"`
	RetailPrice     *float64 `json:"retailPrice"`
	SalePrice       *float64 `json:"salePrice"`
	ScanData        *string  `json:"scanData"`
	ScanTypeID      int      `json:"scanTypeId"`
	ProductName     string   `json:"productName"`
	BrandName       string   `json:"brandName"`
}

// UploadReport is the wire form of an explicit report.
type UploadReport struct {
	ReportID        string  `json:"reportId"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
	ScanID          *string `json:"scanId"`
	ChainXProductID int     `json:"chainXProductId"`
	ReorderStatusID int     `json:"reorderStatusId"`
}

// UploadConditions is the wire form of a product's condition set.
type UploadConditions struct {
	ChainXProductID int   `json:"chainXProductId"`
	SKUConditionIDs []int `json:"skuConditionIds"`
}

// SerializeAudit assembles the complete upload document for one audit.
// Only explicit reports are included; the server derives the rest from the
// catalog the same way reconciliation does locally.
func (d *DB) SerializeAudit(ctx context.Context, audit *Audit, user session.User) (*UploadPayload, error) {
	ctx = sqlitedb.EnsureContext(ctx)

	scans, err := d.Scans(ctx, audit)
	if err != nil {
		return nil, err
	}
	reports, err := d.Reports(ctx, audit)
	if err != nil {
		return nil, err
	}
	conditions, err := d.AllSelectedConditions(ctx, audit)
	if err != nil {
		return nil, err
	}
	notes, err := d.GetNotes(ctx, audit)
	if err != nil {
		return nil, err
	}

	payload := &UploadPayload{
		ID:               audit.ID,
		StoreID:          audit.StoreID,
		AuditStartedAt:   timefmt.Format(audit.StartedAt),
		AuditEndedAt:     timefmt.FormatPtr(audit.EndedAt),
		LatitudeAtStart:  audit.LatitudeAtStart,
		LongitudeAtStart: audit.LongitudeAtStart,
		LatitudeAtEnd:    audit.LatitudeAtEnd,
		LongitudeAtEnd:   audit.LongitudeAtEnd,
		User:             UploadUser{UserID: user.ID, ClientID: user.ClientID},
		Scans:            make([]UploadScan, 0, len(scans)),
		Reports:          make([]UploadReport, 0, len(reports)),
		SKUConditions:    make([]UploadConditions, 0, len(conditions)),
		Notes:            notes.Contents,
		StoreNote:        notes.StoreText,
	}

	for _, scan := range scans {
		payload.Scans = append(payload.Scans, UploadScan{
			ScanID:          scan.ID,
			CreatedAt:       timefmt.Format(scan.CreatedAt),
			UpdatedAt:       timefmt.Format(scan.UpdatedAt),
			ChainXProductID: scan.ProductID,
			RetailPrice:     scan.RetailPrice,
			SalePrice:       scan.SalePrice,
			ScanData:        scan.ScanData,
			ScanTypeID:      scan.ScanTypeID,
			ProductName:     scan.ProductName,
			BrandName:       scan.BrandName,
		})
	}
	for _, report := range reports {
		payload.Reports = append(payload.Reports, UploadReport{
			ReportID:        report.ID,
			CreatedAt:       timefmt.Format(report.CreatedAt),
			UpdatedAt:       timefmt.Format(report.UpdatedAt),
			ScanID:          report.ScanID,
			ChainXProductID: report.ProductID,
			ReorderStatusID: int(report.Status),
		})
	}
	for _, record := range conditions {
		payload.SKUConditions = append(payload.SKUConditions, UploadConditions{
			ChainXProductID: record.ProductID,
			SKUConditionIDs: record.ConditionIDs,
		})
	}
	return payload, nil
}
