package gormstore

// Schema is the reference MySQL schema for the aegis_rule table, for
// deployments that manage migrations outside of AutoMigrate.
const Schema = `
CREATE TABLE IF NOT EXISTS aegis_rule (
    id bigint unsigned AUTO_INCREMENT PRIMARY KEY,
    p_type varchar(100) NOT NULL,
    v0 varchar(100),
    v1 varchar(100),
    v2 varchar(100),
    v3 varchar(100),
    v4 varchar(100),
    v5 varchar(100),
    UNIQUE KEY idx_aegis_rule (p_type, v0, v1, v2, v3, v4, v5),
    INDEX idx_aegis_rule_p_type (p_type)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
`
