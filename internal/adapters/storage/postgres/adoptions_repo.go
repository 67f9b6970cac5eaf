package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pet-adoption-api/internal/domain/adoptions"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type AdoptionsRepo struct {
	db *sql.DB
}

func NewAdoptionsRepo(db *sql.DB) *AdoptionsRepo {
	return &AdoptionsRepo{db: db}
}

const adoptionColumns = `
	ad.id, ad.animal_id, ad.applicant_id,
	ad.status, ad.application_date,
	ad.home_type, ad.has_yard, ad.has_children, ad.has_other_pets,
	ad.other_pets_description, ad.hours_alone_per_day, ad.income,
	ad.pet_experience, ad.reason_for_adopting, ad.references_json, ad.additional_info,
	ad.reviewed_by_id, ad.review_date, ad.review_notes, ad.completion_date,
	ad.created_at, ad.updated_at`

func scanAdoption(scan func(...any) error, ad *adoptions.Adoption) error {
	var status, homeType string
	var refs []byte
	if err := scan(
		&ad.ID, &ad.AnimalID, &ad.ApplicantID,
		&status, &ad.ApplicationDate,
		&homeType, &ad.HasYard, &ad.HasChildren, &ad.HasOtherPets,
		&ad.OtherPetsDescription, &ad.HoursAlonePerDay, &ad.Income,
		&ad.Experience, &ad.Reason, &refs, &ad.AdditionalInfo,
		&ad.ReviewedByID, &ad.ReviewDate, &ad.ReviewNotes, &ad.CompletionDate,
		&ad.CreatedAt, &ad.UpdatedAt,
	); err != nil {
		return err
	}
	ad.Status = adoptions.Status(status)
	ad.HomeType = adoptions.HomeType(homeType)
	ad.References = refs
	return nil
}

func (r *AdoptionsRepo) Create(ctx context.Context, ad adoptions.Adoption) error {
	var refs any
	if len(ad.References) > 0 {
		refs = []byte(ad.References)
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO adoptions (
			id, animal_id, applicant_id,
			status, application_date,
			home_type, has_yard, has_children, has_other_pets,
			other_pets_description, hours_alone_per_day, income,
			pet_experience, reason_for_adopting, references_json, additional_info,
			created_at, updated_at
		) VALUES (
			$1,$2,$3,
			$4,$5,
			$6,$7,$8,$9,
			$10,$11,$12,
			$13,$14,$15,$16,
			$17,$18
		)
	`,
		ad.ID, ad.AnimalID, ad.ApplicantID,
		string(ad.Status), ad.ApplicationDate,
		string(ad.HomeType), ad.HasYard, ad.HasChildren, ad.HasOtherPets,
		ad.OtherPetsDescription, ad.HoursAlonePerDay, ad.Income,
		ad.Experience, ad.Reason, refs, ad.AdditionalInfo,
		ad.CreatedAt, ad.UpdatedAt,
	)
	if err != nil {
		// el índice parcial sobre (animal_id, applicant_id) activos
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return adoptions.ErrDuplicateApplication
		}
		return err
	}
	return nil
}

func (r *AdoptionsRepo) GetByID(ctx context.Context, id string) (adoptions.Adoption, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return adoptions.Adoption{}, adoptions.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+adoptionColumns+` FROM adoptions ad WHERE ad.id = $1`, id)

	var ad adoptions.Adoption
	if err := scanAdoption(row.Scan, &ad); err != nil {
		if err == sql.ErrNoRows {
			return adoptions.Adoption{}, adoptions.ErrNotFound
		}
		return adoptions.Adoption{}, err
	}
	return ad, nil
}

const adoptionDetailJoin = `
	FROM adoptions ad
	JOIN animals a ON a.id = ad.animal_id
	LEFT JOIN users u ON u.id = ad.applicant_id
	LEFT JOIN animal_images i ON i.animal_id = a.id AND i.is_primary`

const adoptionDetailColumns = `,
	a.id, a.name, a.species, a.breed, a.adoption_status, i.image_url,
	u.id, u.name, u.email, u.phone`

func scanAdoptionDetail(scan func(...any) error, d *adoptions.Detail) error {
	var imgURL sql.NullString
	var uid, uname, uemail, uphone sql.NullString
	inner := func(dest ...any) error {
		dest = append(dest,
			&d.Animal.ID, &d.Animal.Name, &d.Animal.Species, &d.Animal.Breed, &d.Animal.Status, &imgURL,
			&uid, &uname, &uemail, &uphone,
		)
		return scan(dest...)
	}
	if err := scanAdoption(inner, &d.Adoption); err != nil {
		return err
	}
	d.Animal.PrimaryImageURL = imgURL.String
	d.Applicant = adoptions.Applicant{ID: uid.String, Name: uname.String, Email: uemail.String, Phone: uphone.String}
	if d.Applicant.ID == "" {
		d.Applicant.ID = d.ApplicantID
	}
	return nil
}

func (r *AdoptionsRepo) GetDetail(ctx context.Context, id string) (adoptions.Detail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return adoptions.Detail{}, adoptions.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+adoptionColumns+adoptionDetailColumns+adoptionDetailJoin+` WHERE ad.id = $1`, id)

	var d adoptions.Detail
	if err := scanAdoptionDetail(row.Scan, &d); err != nil {
		if err == sql.ErrNoRows {
			return adoptions.Detail{}, adoptions.ErrNotFound
		}
		return adoptions.Detail{}, err
	}
	return d, nil
}

func (r *AdoptionsRepo) ListByApplicant(ctx context.Context, applicantID string) ([]adoptions.Detail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+adoptionColumns+adoptionDetailColumns+adoptionDetailJoin+`
		WHERE ad.applicant_id = $1
		ORDER BY ad.application_date DESC`, applicantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]adoptions.Detail, 0)
	for rows.Next() {
		var d adoptions.Detail
		if err := scanAdoptionDetail(rows.Scan, &d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *AdoptionsRepo) FindActive(ctx context.Context, animalID, applicantID string) (adoptions.Adoption, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+adoptionColumns+`
		FROM adoptions ad
		WHERE ad.animal_id = $1 AND ad.applicant_id = $2 AND ad.status IN ('pending','approved')
		LIMIT 1
	`, animalID, applicantID)

	var ad adoptions.Adoption
	if err := scanAdoption(row.Scan, &ad); err != nil {
		if err == sql.ErrNoRows {
			return adoptions.Adoption{}, adoptions.ErrNotFound
		}
		return adoptions.Adoption{}, err
	}
	return ad, nil
}

func (r *AdoptionsRepo) UpdateStatus(ctx context.Context, ad adoptions.Adoption) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE adoptions SET
			status = $2, reviewed_by_id = $3, review_date = $4,
			review_notes = $5, completion_date = $6, updated_at = $7
		WHERE id = $1
	`,
		ad.ID, string(ad.Status), ad.ReviewedByID, ad.ReviewDate,
		ad.ReviewNotes, ad.CompletionDate, ad.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return adoptions.ErrNotFound
	}
	return nil
}

// Approve hace la escritura dual (solicitud + animal) en una transacción,
// re-chequeando bajo lock los estados que el service vio.
func (r *AdoptionsRepo) Approve(ctx context.Context, ad adoptions.Adoption) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var curStatus string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM adoptions WHERE id = $1 FOR UPDATE`, ad.ID,
	).Scan(&curStatus)
	if err != nil {
		if err == sql.ErrNoRows {
			return adoptions.ErrNotFound
		}
		return err
	}
	if adoptions.Status(curStatus) != adoptions.StatusPending {
		return adoptions.ErrStaleState
	}

	var animalStatus string
	err = tx.QueryRowContext(ctx,
		`SELECT adoption_status FROM animals WHERE id = $1 FOR UPDATE`, ad.AnimalID,
	).Scan(&animalStatus)
	if err != nil {
		if err == sql.ErrNoRows {
			return adoptions.ErrAnimalNotFound
		}
		return err
	}
	if animalStatus == "adopted" {
		return adoptions.ErrStaleState
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE adoptions SET
			status = $2, reviewed_by_id = $3, review_date = $4,
			review_notes = $5, updated_at = $6
		WHERE id = $1
	`, ad.ID, string(ad.Status), ad.ReviewedByID, ad.ReviewDate, ad.ReviewNotes, ad.UpdatedAt); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE animals SET
			adoption_status = 'adopted', adopted_by_id = $2, adoption_date = $3, updated_at = $4
		WHERE id = $1
	`, ad.AnimalID, ad.ApplicantID, ad.ReviewDate, ad.UpdatedAt); err != nil {
		return err
	}

	return tx.Commit()
}
