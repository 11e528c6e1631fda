package repository

// Schema is applied on every startup; all statements are idempotent.
//
// Constraint names are referenced by constraintErrors, keep them in sync.
const Schema = `
-- users: one row per wallet address, created on first sign-in.
CREATE TABLE IF NOT EXISTS users (
    user_id    TEXT PRIMARY KEY,
    username   TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT users_username_key UNIQUE (username)
);

-- posts: username is copied from the author at write time and never re-joined.
CREATE TABLE IF NOT EXISTS posts (
    post_id    BIGSERIAL PRIMARY KEY,
    user_id    TEXT NOT NULL,
    username   TEXT NOT NULL,
    content    TEXT NOT NULL CHECK (content <> ''),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT posts_user_fk FOREIGN KEY (user_id) REFERENCES users (user_id)
);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at DESC, post_id DESC);
CREATE INDEX IF NOT EXISTS idx_posts_user_id ON posts (user_id);

CREATE TABLE IF NOT EXISTS comments (
    comment_id BIGSERIAL PRIMARY KEY,
    post_id    BIGINT NOT NULL,
    user_id    TEXT NOT NULL,
    username   TEXT NOT NULL,
    content    TEXT NOT NULL CHECK (content <> ''),
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT comments_post_fk FOREIGN KEY (post_id) REFERENCES posts (post_id),
    CONSTRAINT comments_user_fk FOREIGN KEY (user_id) REFERENCES users (user_id)
);
CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments (post_id, created_at, comment_id);
CREATE INDEX IF NOT EXISTS idx_comments_user_id ON comments (user_id);

-- likes: at most one per (post, user); there is no unlike.
CREATE TABLE IF NOT EXISTS likes (
    like_id    BIGSERIAL PRIMARY KEY,
    post_id    BIGINT NOT NULL,
    user_id    TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT likes_post_user_key UNIQUE (post_id, user_id),
    CONSTRAINT likes_post_fk FOREIGN KEY (post_id) REFERENCES posts (post_id),
    CONSTRAINT likes_user_fk FOREIGN KEY (user_id) REFERENCES users (user_id)
);
`
