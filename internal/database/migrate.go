package database

import (
	"context"
	"database/sql"
)

// Migrate creates the application schema when it does not exist yet.
// Statements are idempotent and ordered so that referenced tables are
// created before their dependents.
//
// The reservation_units table carries the invariants the whole
// booking core rests on:
//
//   - uq_reservation_atom (table_id, slot_id, booking_date): two
//     bookings can never insert the same atomic hold, no matter how
//     they interleave.  Application-level availability checks are a
//     pre-filter; this key is the arbiter.
//   - fk_unit_table_cafe / fk_unit_slot_cafe: composite foreign keys
//     that force the referenced table and slot to belong to the same
//     cafe as the unit itself.
//   - booking_id FK with ON DELETE CASCADE: units live and die with
//     their booking.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            CHAR(36)     NOT NULL,
			email         VARCHAR(255) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role          ENUM('USER','MANAGER','ADMIN') NOT NULL DEFAULT 'USER',
			is_active     TINYINT(1)   NOT NULL DEFAULT 1,
			created_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_users_email (email)
		) ENGINE=InnoDB`,

		`CREATE TABLE IF NOT EXISTS refresh_tokens (
			id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
			user_id    CHAR(36)  NOT NULL,
			token_hash CHAR(64)  NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			revoked_at TIMESTAMP NULL DEFAULT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_refresh_hash (token_hash),
			KEY ix_refresh_user (user_id),
			CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
		) ENGINE=InnoDB`,

		`CREATE TABLE IF NOT EXISTS cafes (
			id          CHAR(36)     NOT NULL,
			name        VARCHAR(128) NOT NULL,
			address     VARCHAR(300) NOT NULL,
			phone       VARCHAR(15)  NOT NULL,
			description TEXT         NULL,
			is_active   TINYINT(1)   NOT NULL DEFAULT 1,
			created_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_cafes_name (name),
			UNIQUE KEY uq_cafes_address (address),
			UNIQUE KEY uq_cafes_phone (phone)
		) ENGINE=InnoDB`,

		`CREATE TABLE IF NOT EXISTS cafe_managers (
			cafe_id CHAR(36) NOT NULL,
			user_id CHAR(36) NOT NULL,
			PRIMARY KEY (cafe_id, user_id),
			CONSTRAINT fk_cm_cafe FOREIGN KEY (cafe_id) REFERENCES cafes (id) ON DELETE CASCADE,
			CONSTRAINT fk_cm_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
		) ENGINE=InnoDB`,

		`CREATE TABLE IF NOT EXISTS cafe_tables (
			id          CHAR(36)   NOT NULL,
			cafe_id     CHAR(36)   NOT NULL,
			seat_number INT        NOT NULL,
			description TEXT       NULL,
			is_active   TINYINT(1) NOT NULL DEFAULT 1,
			created_at  TIMESTAMP  NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  TIMESTAMP  NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_table_number_per_cafe (cafe_id, seat_number),
			UNIQUE KEY uq_table_cafe_id_id (cafe_id, id),
			CONSTRAINT fk_table_cafe FOREIGN KEY (cafe_id) REFERENCES cafes (id) ON DELETE CASCADE
		) ENGINE=InnoDB`,

		`CREATE TABLE IF NOT EXISTS slots (
			id          CHAR(36)   NOT NULL,
			cafe_id     CHAR(36)   NOT NULL,
			start_time  TIME       NOT NULL,
			end_time    TIME       NOT NULL,
			description TEXT       NOT NULL,
			is_active   TINYINT(1) NOT NULL DEFAULT 1,
			created_at  TIMESTAMP  NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  TIMESTAMP  NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_slots_cafe_window (cafe_id, start_time, end_time),
			UNIQUE KEY uq_slot_cafe_id_id (cafe_id, id),
			CONSTRAINT fk_slot_cafe FOREIGN KEY (cafe_id) REFERENCES cafes (id) ON DELETE CASCADE,
			CONSTRAINT ck_slot_interval CHECK (start_time < end_time)
		) ENGINE=InnoDB`,

		`CREATE TABLE IF NOT EXISTS dishes (
			id          CHAR(36)     NOT NULL,
			cafe_id     CHAR(36)     NOT NULL,
			name        VARCHAR(128) NOT NULL,
			description TEXT         NULL,
			price_cents INT UNSIGNED NOT NULL DEFAULT 0,
			is_active   TINYINT(1)   NOT NULL DEFAULT 1,
			created_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			UNIQUE KEY uq_dish_name_per_cafe (cafe_id, name),
			CONSTRAINT fk_dish_cafe FOREIGN KEY (cafe_id) REFERENCES cafes (id) ON DELETE CASCADE
		) ENGINE=InnoDB`,

		`CREATE TABLE IF NOT EXISTS bookings (
			id           CHAR(36)   NOT NULL,
			user_id      CHAR(36)   NOT NULL,
			cafe_id      CHAR(36)   NOT NULL,
			booking_date DATE       NOT NULL,
			guest_number INT        NOT NULL,
			status       ENUM('CONFIRMED','CANCELED','DONE') NOT NULL DEFAULT 'CONFIRMED',
			note         TEXT       NULL,
			is_active    TINYINT(1) NOT NULL DEFAULT 1,
			created_at   TIMESTAMP  NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   TIMESTAMP  NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
			PRIMARY KEY (id),
			KEY ix_bookings_user (user_id),
			KEY ix_bookings_cafe (cafe_id),
			CONSTRAINT fk_booking_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
			CONSTRAINT fk_booking_cafe FOREIGN KEY (cafe_id) REFERENCES cafes (id) ON DELETE CASCADE
		) ENGINE=InnoDB`,

		`CREATE TABLE IF NOT EXISTS reservation_units (
			id           CHAR(36) NOT NULL,
			booking_id   CHAR(36) NOT NULL,
			cafe_id      CHAR(36) NOT NULL,
			table_id     CHAR(36) NOT NULL,
			slot_id      CHAR(36) NOT NULL,
			booking_date DATE     NOT NULL,
			PRIMARY KEY (id),
			UNIQUE KEY uq_reservation_atom (table_id, slot_id, booking_date),
			KEY ix_units_booking (booking_id),
			KEY ix_units_cafe_date (cafe_id, booking_date),
			CONSTRAINT fk_unit_booking FOREIGN KEY (booking_id) REFERENCES bookings (id) ON DELETE CASCADE,
			CONSTRAINT fk_unit_table_cafe FOREIGN KEY (cafe_id, table_id) REFERENCES cafe_tables (cafe_id, id) ON DELETE RESTRICT,
			CONSTRAINT fk_unit_slot_cafe FOREIGN KEY (cafe_id, slot_id) REFERENCES slots (cafe_id, id) ON DELETE RESTRICT
		) ENGINE=InnoDB`,
	}

	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
