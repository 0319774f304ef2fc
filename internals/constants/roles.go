package constants

import "fmt"

// Role yang dikenali di klaim JWT
const (
	RoleAdmin      = "admin"
	RoleFinance    = "finance"
	RoleProprietor = "proprietor"
)

// Template pesan error role
const (
	ErrOnlyAdminsCanAccess = "Hanya admin yang boleh mengakses fitur %s."
	ErrOnlyStaffCanAccess  = "Hanya admin atau finance yang boleh mengakses fitur %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

// StaffRoles boleh membaca dan me-refund pembayaran dari panel admin.
var StaffRoles = []string{RoleAdmin, RoleFinance}
