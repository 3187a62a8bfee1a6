package store

const (
	queryCreateUser = `
		INSERT INTO users (id, email, password_hash, name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password_hash, name, premium, stripe_customer_id, created_at, updated_at
	`

	queryFindUserByEmail = `
		SELECT id, email, password_hash, name, premium, stripe_customer_id, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	queryFindUserByID = `
		SELECT id, email, password_hash, name, premium, stripe_customer_id, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	queryUserExistsByEmail = `
		SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)
	`

	queryUserPremium = `
		SELECT premium FROM users WHERE id = $1
	`

	querySetPremium = `
		UPDATE users
		SET premium = $1, updated_at = NOW()
		WHERE id = $2
	`

	querySetStripeCustomerID = `
		UPDATE users
		SET stripe_customer_id = $1, updated_at = NOW()
		WHERE id = $2
	`

	queryFindUserByStripeCustomer = `
		SELECT id, email, password_hash, name, premium, stripe_customer_id, created_at, updated_at
		FROM users
		WHERE stripe_customer_id = $1
	`

	queryInsertGeneration = `
		INSERT INTO dm_generations (owner_ref, tone, platform, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	queryRecentGenerationsByOwner = `
		SELECT id, owner_ref, tone, platform, message, created_at
		FROM dm_generations
		WHERE owner_ref = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	queryCountGenerationsBetween = `
		SELECT COUNT(*) FROM dm_generations
		WHERE created_at >= $1 AND created_at < $2
	`

	queryDeleteGenerationsBefore = `
		DELETE FROM dm_generations
		WHERE created_at < $1
	`
)
