package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pet-adoption-api/internal/domain/animals"
	"pet-adoption-api/internal/domain/users"
)

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `
	a.id, a.name, a.species, a.breed, a.age_months, a.gender, a.size, a.color,
	a.description, a.health_status, a.behavior,
	a.special_needs, a.special_needs_description, a.house_trained,
	a.good_with_kids, a.good_with_dogs, a.good_with_cats,
	a.microchipped, a.microchip_id, a.neutered, a.vaccinated, a.featured,
	a.adoption_fee, a.adoption_status, a.location,
	a.created_by_id, a.adopted_by_id, a.adoption_date,
	a.created_at, a.updated_at`

func scanAnimal(scan func(...any) error, a *animals.Animal) error {
	var species, gender, size, status string
	if err := scan(
		&a.ID, &a.Name, &species, &a.Breed, &a.AgeMonths, &gender, &size, &a.Color,
		&a.Description, &a.HealthStatus, &a.Behavior,
		&a.SpecialNeeds, &a.SpecialNeedsDescription, &a.HouseTrained,
		&a.GoodWithKids, &a.GoodWithDogs, &a.GoodWithCats,
		&a.Microchipped, &a.MicrochipID, &a.Neutered, &a.Vaccinated, &a.Featured,
		&a.AdoptionFee, &status, &a.Location,
		&a.CreatedByID, &a.AdoptedByID, &a.AdoptionDate,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return err
	}
	a.Species = animals.Species(species)
	a.Gender = animals.Gender(gender)
	a.Size = animals.Size(size)
	a.Status = animals.Status(status)
	return nil
}

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO animals (
			id, name, species, breed, age_months, gender, size, color,
			description, health_status, behavior,
			special_needs, special_needs_description, house_trained,
			good_with_kids, good_with_dogs, good_with_cats,
			microchipped, microchip_id, neutered, vaccinated, featured,
			adoption_fee, adoption_status, location,
			created_by_id, adopted_by_id, adoption_date,
			created_at, updated_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,$7,$8,
			$9,$10,$11,
			$12,$13,$14,
			$15,$16,$17,
			$18,$19,$20,$21,$22,
			$23,$24,$25,
			$26,$27,$28,
			$29,$30
		)
	`,
		a.ID, a.Name, string(a.Species), a.Breed, a.AgeMonths, string(a.Gender), string(a.Size), a.Color,
		a.Description, a.HealthStatus, a.Behavior,
		a.SpecialNeeds, a.SpecialNeedsDescription, a.HouseTrained,
		a.GoodWithKids, a.GoodWithDogs, a.GoodWithCats,
		a.Microchipped, a.MicrochipID, a.Neutered, a.Vaccinated, a.Featured,
		a.AdoptionFee, string(a.Status), a.Location,
		a.CreatedByID, a.AdoptedByID, a.AdoptionDate,
		a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE animals SET
			name = $2, species = $3, breed = $4, age_months = $5,
			gender = $6, size = $7, color = $8,
			description = $9, health_status = $10, behavior = $11,
			special_needs = $12, special_needs_description = $13, house_trained = $14,
			good_with_kids = $15, good_with_dogs = $16, good_with_cats = $17,
			microchipped = $18, microchip_id = $19, neutered = $20, vaccinated = $21,
			featured = $22,
			adoption_fee = $23, adoption_status = $24, location = $25,
			adopted_by_id = $26, adoption_date = $27,
			updated_at = $28
		WHERE id = $1
	`,
		a.ID, a.Name, string(a.Species), a.Breed, a.AgeMonths,
		string(a.Gender), string(a.Size), a.Color,
		a.Description, a.HealthStatus, a.Behavior,
		a.SpecialNeeds, a.SpecialNeedsDescription, a.HouseTrained,
		a.GoodWithKids, a.GoodWithDogs, a.GoodWithCats,
		a.Microchipped, a.MicrochipID, a.Neutered, a.Vaccinated,
		a.Featured,
		a.AdoptionFee, string(a.Status), a.Location,
		a.AdoptedByID, a.AdoptionDate,
		a.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return animals.ErrNotFound
	}
	return nil
}

func (r *AnimalsRepo) Delete(ctx context.Context, id string) error {
	// imágenes y vacunas caen por ON DELETE CASCADE
	res, err := r.db.ExecContext(ctx, `DELETE FROM animals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return animals.ErrNotFound
	}
	return nil
}

func (r *AnimalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, animals.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+animalColumns+` FROM animals a WHERE a.id = $1`, id)

	var a animals.Animal
	if err := scanAnimal(row.Scan, &a); err != nil {
		if err == sql.ErrNoRows {
			return animals.Animal{}, animals.ErrNotFound
		}
		return animals.Animal{}, err
	}
	return a, nil
}

func (r *AnimalsRepo) GetDetail(ctx context.Context, id string) (animals.Detail, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Detail{}, animals.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+animalColumns+`,
			u.id, u.name, u.email, u.phone
		FROM animals a
		LEFT JOIN users u ON u.id = a.created_by_id
		WHERE a.id = $1
	`, id)

	var d animals.Detail
	var uid, uname, uemail, uphone sql.NullString
	scan := func(dest ...any) error {
		dest = append(dest, &uid, &uname, &uemail, &uphone)
		return row.Scan(dest...)
	}
	if err := scanAnimal(scan, &d.Animal); err != nil {
		if err == sql.ErrNoRows {
			return animals.Detail{}, animals.ErrNotFound
		}
		return animals.Detail{}, err
	}
	d.Creator = users.Contact{ID: uid.String, Name: uname.String, Email: uemail.String, Phone: uphone.String}
	if d.Creator.ID == "" {
		d.Creator.ID = d.CreatedByID
	}

	imgs, err := r.ListImages(ctx, d.ID)
	if err != nil {
		return animals.Detail{}, err
	}
	d.Images = imgs

	vaccs, err := r.listVaccinations(ctx, d.ID)
	if err != nil {
		return animals.Detail{}, err
	}
	d.Vaccinations = vaccs

	return d, nil
}

// buildFilter arma el WHERE parametrizado; devuelve la cláusula (sin el
// literal WHERE) y los args en orden.
func buildFilter(f animals.Filter) (string, []any) {
	conds := make([]string, 0, 8)
	args := make([]any, 0, 8)
	argN := 1

	add := func(cond string, vals ...any) {
		for range vals {
			cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", argN), 1)
			argN++
		}
		conds = append(conds, cond)
		args = append(args, vals...)
	}

	if f.Species != "" {
		add("a.species = ?", string(f.Species))
	}
	if f.Gender != "" {
		add("a.gender = ?", string(f.Gender))
	}
	if f.Size != "" {
		add("a.size = ?", string(f.Size))
	}
	if f.Status != "" {
		add("a.adoption_status = ?", string(f.Status))
	}
	if f.Breed != "" {
		add("a.breed ILIKE ?", "%"+f.Breed+"%")
	}
	if f.Location != "" {
		add("a.location ILIKE ?", "%"+f.Location+"%")
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		add("(a.name ILIKE ? OR a.breed ILIKE ? OR a.description ILIKE ?)", like, like, like)
	}
	if f.AgeMin != nil {
		add("a.age_months >= ?", *f.AgeMin)
	}
	if f.AgeMax != nil {
		add("a.age_months <= ?", *f.AgeMax)
	}
	if f.GoodWithKids {
		conds = append(conds, "a.good_with_kids")
	}
	if f.GoodWithDogs {
		conds = append(conds, "a.good_with_dogs")
	}
	if f.GoodWithCats {
		conds = append(conds, "a.good_with_cats")
	}

	if len(conds) == 0 {
		return "TRUE", args
	}
	return strings.Join(conds, " AND "), args
}

func (r *AnimalsRepo) List(ctx context.Context, q animals.ListQuery) ([]animals.Summary, int, error) {
	where, args := buildFilter(q.Filter)

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM animals a WHERE `+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT ` + animalColumns + `,
			u.id, u.name, u.email, u.phone,
			i.id, i.image_url, i.storage_key, i.caption, i.sort_order, i.created_at
		FROM animals a
		LEFT JOIN users u ON u.id = a.created_by_id
		LEFT JOIN animal_images i ON i.animal_id = a.id AND i.is_primary
		WHERE `)
	sb.WriteString(where)

	argN := len(args) + 1
	// SortColumn viene del allowlist del dominio, nunca del caller crudo.
	sb.WriteString(fmt.Sprintf(" ORDER BY a.%s %s, a.id %s", q.SortColumn, q.Order, q.Order))
	sb.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argN, argN+1))
	args = append(args, q.Limit, q.Offset)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]animals.Summary, 0)
	for rows.Next() {
		var s animals.Summary
		var uid, uname, uemail, uphone sql.NullString
		var imgID, imgURL, imgKey, imgCaption sql.NullString
		var imgOrder sql.NullInt64
		var imgCreated sql.NullTime

		scan := func(dest ...any) error {
			dest = append(dest,
				&uid, &uname, &uemail, &uphone,
				&imgID, &imgURL, &imgKey, &imgCaption, &imgOrder, &imgCreated,
			)
			return rows.Scan(dest...)
		}
		if err := scanAnimal(scan, &s.Animal); err != nil {
			return nil, 0, err
		}

		s.Creator = users.Contact{ID: uid.String, Name: uname.String, Email: uemail.String, Phone: uphone.String}
		if s.Creator.ID == "" {
			s.Creator.ID = s.CreatedByID
		}
		if imgID.Valid {
			s.PrimaryImage = &animals.Image{
				ID:         imgID.String,
				AnimalID:   s.ID,
				URL:        imgURL.String,
				StorageKey: imgKey.String,
				IsPrimary:  true,
				Caption:    imgCaption.String,
				SortOrder:  int(imgOrder.Int64),
				CreatedAt:  imgCreated.Time,
			}
		}

		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *AnimalsRepo) AddImage(ctx context.Context, img animals.Image) (animals.Image, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return animals.Image{}, err
	}
	defer tx.Rollback()

	// lock del animal: serializa altas y bajas de imágenes por animal
	var animalID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM animals WHERE id = $1 FOR UPDATE`, img.AnimalID,
	).Scan(&animalID)
	if err != nil {
		if err == sql.ErrNoRows {
			return animals.Image{}, animals.ErrNotFound
		}
		return animals.Image{}, err
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM animal_images WHERE animal_id = $1`, img.AnimalID,
	).Scan(&count); err != nil {
		return animals.Image{}, err
	}

	if count == 0 {
		// la primera imagen siempre queda primaria
		img.IsPrimary = true
	} else if img.IsPrimary {
		if _, err := tx.ExecContext(ctx,
			`UPDATE animal_images SET is_primary = FALSE WHERE animal_id = $1 AND is_primary`,
			img.AnimalID,
		); err != nil {
			return animals.Image{}, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO animal_images (id, animal_id, image_url, storage_key, is_primary, caption, sort_order, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, img.ID, img.AnimalID, img.URL, img.StorageKey, img.IsPrimary, img.Caption, img.SortOrder, img.CreatedAt); err != nil {
		return animals.Image{}, err
	}

	if err := tx.Commit(); err != nil {
		return animals.Image{}, err
	}
	return img, nil
}

func (r *AnimalsRepo) GetImage(ctx context.Context, animalID, imageID string) (animals.Image, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, animal_id, image_url, storage_key, is_primary, caption, sort_order, created_at
		FROM animal_images
		WHERE id = $1 AND animal_id = $2
	`, imageID, animalID)

	var img animals.Image
	err := row.Scan(&img.ID, &img.AnimalID, &img.URL, &img.StorageKey, &img.IsPrimary, &img.Caption, &img.SortOrder, &img.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return animals.Image{}, animals.ErrImageNotFound
		}
		return animals.Image{}, err
	}
	return img, nil
}

func (r *AnimalsRepo) ListImages(ctx context.Context, animalID string) ([]animals.Image, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, animal_id, image_url, storage_key, is_primary, caption, sort_order, created_at
		FROM animal_images
		WHERE animal_id = $1
		ORDER BY sort_order ASC, created_at ASC
	`, animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Image, 0)
	for rows.Next() {
		var img animals.Image
		if err := rows.Scan(&img.ID, &img.AnimalID, &img.URL, &img.StorageKey, &img.IsPrimary, &img.Caption, &img.SortOrder, &img.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, rows.Err()
}

func (r *AnimalsRepo) DeleteImage(ctx context.Context, animalID, imageID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM animals WHERE id = $1 FOR UPDATE`, animalID,
	).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return animals.ErrNotFound
		}
		return err
	}

	var wasPrimary bool
	err = tx.QueryRowContext(ctx,
		`SELECT is_primary FROM animal_images WHERE id = $1 AND animal_id = $2`,
		imageID, animalID,
	).Scan(&wasPrimary)
	if err != nil {
		if err == sql.ErrNoRows {
			return animals.ErrImageNotFound
		}
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM animal_images WHERE id = $1`, imageID,
	); err != nil {
		return err
	}

	if wasPrimary {
		// promover la de menor orden (empate: la más antigua)
		if _, err := tx.ExecContext(ctx, `
			UPDATE animal_images SET is_primary = TRUE
			WHERE id = (
				SELECT id FROM animal_images
				WHERE animal_id = $1
				ORDER BY sort_order ASC, created_at ASC
				LIMIT 1
			)
		`, animalID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *AnimalsRepo) AddVaccination(ctx context.Context, v animals.Vaccination) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vaccinations (id, animal_id, name, date, expiration_date, veterinarian, notes, document_url, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, v.ID, v.AnimalID, v.Name, v.Date, v.ExpirationDate, v.Veterinarian, v.Notes, v.DocumentURL, v.CreatedAt)
	return err
}

func (r *AnimalsRepo) listVaccinations(ctx context.Context, animalID string) ([]animals.Vaccination, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, animal_id, name, date, expiration_date, veterinarian, notes, document_url, created_at
		FROM vaccinations
		WHERE animal_id = $1
		ORDER BY date DESC
	`, animalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Vaccination, 0)
	for rows.Next() {
		var v animals.Vaccination
		if err := rows.Scan(&v.ID, &v.AnimalID, &v.Name, &v.Date, &v.ExpirationDate, &v.Veterinarian, &v.Notes, &v.DocumentURL, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
