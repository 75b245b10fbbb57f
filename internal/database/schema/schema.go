package schema

// SchemaSQL contains the full database schema initialization script
const SchemaSQL = `
-- Growing Protocols (recipes)
CREATE TABLE IF NOT EXISTS growing_protocols (
    protocol_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    variety VARCHAR(100) NOT NULL,
    cultivar VARCHAR(100) NOT NULL DEFAULT '',
    lot_number VARCHAR(100) NOT NULL DEFAULT '',
    soak_hours DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (soak_hours >= 0),
    germination_days DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (germination_days >= 0),
    blackout_days DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (blackout_days >= 0),
    light_days DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (light_days >= 0),
    seed_density_grams DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (seed_density_grams >= 0),
    expected_yield_grams DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (expected_yield_grams >= 0),
    buffer_percent DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (buffer_percent BETWEEN 0 AND 100),
    suspend_watering_hours DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (suspend_watering_hours >= 0),
    active BOOLEAN NOT NULL DEFAULT TRUE,
    depleted_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_protocols_variety ON growing_protocols (variety, cultivar) WHERE active;
CREATE INDEX IF NOT EXISTS idx_protocols_lot ON growing_protocols (lot_number) WHERE active;

-- Harvest Records (append-only yield history)
CREATE TABLE IF NOT EXISTS harvest_records (
    record_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    variety VARCHAR(100) NOT NULL,
    cultivar VARCHAR(100) NOT NULL DEFAULT '',
    harvested_at TIMESTAMPTZ NOT NULL,
    avg_weight_per_tray_g DOUBLE PRECISION NOT NULL CHECK (avg_weight_per_tray_g >= 0)
);

CREATE INDEX IF NOT EXISTS idx_harvest_records_variety ON harvest_records (variety, cultivar, harvested_at DESC);

-- Inventory Lot Entries (received shipments; FIFO by created_at, id)
CREATE TABLE IF NOT EXISTS inventory_lot_entries (
    entry_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    lot_number VARCHAR(100) NOT NULL,
    total_grams NUMERIC(14,4) NOT NULL CHECK (total_grams >= 0),
    consumed_grams NUMERIC(14,4) NOT NULL DEFAULT 0 CHECK (consumed_grams >= 0),
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_lot_entries_fifo ON inventory_lot_entries (lot_number, created_at, entry_id) WHERE active;

-- Batch Aggregates (consolidated production units)
CREATE TABLE IF NOT EXISTS batch_aggregates (
    aggregate_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    protocol_id UUID NOT NULL REFERENCES growing_protocols(protocol_id),
    plant_date DATE NOT NULL,
    harvest_date DATE NOT NULL,
    total_trays INTEGER NOT NULL DEFAULT 0 CHECK (total_trays >= 0),
    total_grams DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (total_grams >= 0),
    status VARCHAR(20) NOT NULL DEFAULT 'draft'
        CHECK (status IN ('draft', 'confirmed', 'cancelled')),
    history JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- At most one open consolidation target per grouping key. This backs the
-- in-process per-key serialization so a second writer fails loudly
-- instead of creating a twin aggregate.
CREATE UNIQUE INDEX IF NOT EXISTS uq_aggregates_draft_key
    ON batch_aggregates (protocol_id, plant_date, harvest_date)
    WHERE status = 'draft';

-- Requirement Records (crop plans)
CREATE TABLE IF NOT EXISTS requirement_records (
    requirement_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    order_id VARCHAR(100) NOT NULL,
    protocol_id UUID NOT NULL REFERENCES growing_protocols(protocol_id),
    trays INTEGER NOT NULL CHECK (trays >= 0),
    grams DOUBLE PRECISION NOT NULL CHECK (grams >= 0),
    plant_by TIMESTAMPTZ NOT NULL,
    harvest_on TIMESTAMPTZ NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'draft'
        CHECK (status IN ('draft', 'active', 'cancelled', 'completed')),
    aggregate_id UUID REFERENCES batch_aggregates(aggregate_id),
    note TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_requirements_order ON requirement_records (order_id);
CREATE INDEX IF NOT EXISTS idx_requirements_aggregate ON requirement_records (aggregate_id);
CREATE INDEX IF NOT EXISTS idx_requirements_group
    ON requirement_records (protocol_id, (plant_by::date), (harvest_on::date))
    WHERE status = 'draft';

-- Growth Batches (physically planted units; historical, never deleted)
CREATE TABLE IF NOT EXISTS growth_batches (
    batch_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    protocol_id UUID NOT NULL REFERENCES growing_protocols(protocol_id),
    tray_ids TEXT[] NOT NULL DEFAULT '{}',
    soaked_at TIMESTAMPTZ,
    germination_at TIMESTAMPTZ,
    blackout_at TIMESTAMPTZ,
    light_at TIMESTAMPTZ,
    harvested_at TIMESTAMPTZ,
    current_stage VARCHAR(20) NOT NULL DEFAULT 'soaking'
        CHECK (current_stage IN ('soaking', 'germination', 'blackout', 'light', 'harvested')),
    watering_suspended BOOLEAN NOT NULL DEFAULT FALSE,
    watering_suspended_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_batches_unharvested ON growth_batches (created_at) WHERE harvested_at IS NULL;

-- Scheduled Transitions (one-shot timers)
CREATE TABLE IF NOT EXISTS scheduled_transitions (
    transition_id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    batch_id UUID NOT NULL REFERENCES growth_batches(batch_id),
    target VARCHAR(20) NOT NULL CHECK (target IN ('stage_advance', 'suspend_watering')),
    stage VARCHAR(20) NOT NULL DEFAULT ''
        CHECK (stage IN ('', 'soaking', 'germination', 'blackout', 'light', 'harvested')),
    due_at TIMESTAMPTZ NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    last_run_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_transitions_due ON scheduled_transitions (due_at) WHERE active;
CREATE INDEX IF NOT EXISTS idx_transitions_batch ON scheduled_transitions (batch_id) WHERE active;
`
