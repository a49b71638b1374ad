package grpc

import (
	"time"

	pb "github.com/dmitrijs2005/clinauth/internal/proto"
	"github.com/dmitrijs2005/clinauth/internal/server/models"
	"github.com/dmitrijs2005/clinauth/internal/server/services"
	"google.golang.org/protobuf/types/known/structpb"
)

// userToRow is the wire shape of a stored user. The password hash never
// leaves the server.
func userToRow(u *models.User) *structpb.Struct {
	row := map[string]string{
		"id":             u.ID,
		"email":          u.Email,
		"profession":     u.Profession,
		"full_name":      u.FullName,
		"city":           u.City,
		"state":          u.State,
		"specialty":      u.Specialty,
		"phone":          u.Phone,
		"license_number": u.LicenseNumber,
	}
	if !u.CreatedAt.IsZero() {
		row["created_at"] = u.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return pb.Strings(row)
}

// rowToNewUser reads an insert row. Unparseable created_at values are
// dropped and the database stamps the row instead.
func rowToNewUser(row *structpb.Struct) services.NewUser {
	in := services.NewUser{
		User: models.User{
			ID:            pb.String(row, "id"),
			Email:         pb.String(row, "email"),
			PasswordHash:  pb.String(row, pb.FieldPasswordHash),
			Profession:    pb.String(row, "profession"),
			FullName:      pb.String(row, "full_name"),
			City:          pb.String(row, "city"),
			State:         pb.String(row, "state"),
			Specialty:     pb.String(row, "specialty"),
			Phone:         pb.String(row, "phone"),
			LicenseNumber: pb.String(row, "license_number"),
		},
		Password: pb.String(row, pb.FieldPassword),
	}
	if t, err := time.Parse(time.RFC3339Nano, pb.String(row, "created_at")); err == nil {
		in.CreatedAt = t
	}
	return in
}
