package solver

// CANVAS_SNAPSHOT_SCRIPT redraws the challenge canvas onto an offscreen one
// downscaled to fit 500x536 and returns it as base64 jpeg with the data-URI
// prefix stripped. hcaptcha paints the bounding-box image straight onto a
// canvas, so there is no URL to fetch.
const CANVAS_SNAPSHOT_SCRIPT = `() => {
	const originalCanvas = document.querySelector("canvas");
	if (!originalCanvas) return "";

	const [originalWidth, originalHeight] = [
		originalCanvas.width,
		originalCanvas.height,
	];
	const scaleFactor = Math.min(500 / originalWidth, 536 / originalHeight);
	const [outputWidth, outputHeight] = [
		originalWidth * scaleFactor,
		originalHeight * scaleFactor,
	];

	const outputCanvas = document.createElement("canvas");
	Object.assign(outputCanvas, { width: outputWidth, height: outputHeight });

	const ctx = outputCanvas.getContext("2d");
	ctx.drawImage(
		originalCanvas,
		0, 0, originalWidth, originalHeight,
		0, 0, outputWidth, outputHeight
	);

	return outputCanvas
		.toDataURL("image/jpeg", 0.4)
		.replace(/^data:image\/(png|jpeg);base64,/, "");
}`
