// Package storage owns the on-disk layout of an archive.
//
// A run produces one folder per user under the configured base directory:
//
//	<base>/<username>/
//	    <username>_avatar.jpg
//	    <username>_info.txt
//	    post_<id>/
//	        <id>_thumbnail.jpg
//	        <id>_video.mp4      (only when the post has a video)
//	        <id>_post_data.txt
//
// Folders are created idempotently. Files are written through a temporary
// file and renamed into place, so an existing file is replaced whole and a
// failed download never leaves a truncated file behind.
package storage
