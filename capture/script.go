package capture

// extractScript walks the rendered DOM and returns one record per visible
// element as a JSON string. It must stay self-contained: no page globals,
// no framework assumptions.
const extractScript = `() => {
	const interactiveTags = new Set(['a','button','input','select','textarea','details','summary']);
	const skipTags = new Set(['script','style','noscript','template','meta','link','head']);

	const records = [];
	const walker = document.createTreeWalker(document.body || document.documentElement, NodeFilter.SHOW_ELEMENT);

	for (let el = walker.currentNode; el; el = walker.nextNode()) {
		if (el.nodeType !== 1) continue;
		const tag = el.tagName.toLowerCase();
		if (skipTags.has(tag)) continue;

		const rect = el.getBoundingClientRect();
		if (rect.width <= 0 && rect.height <= 0) continue;

		const cs = getComputedStyle(el);
		if (cs.display === 'none' || cs.visibility === 'hidden') continue;

		const aria = {};
		const attrs = {};
		for (const a of el.attributes) {
			if (a.name.startsWith('aria-')) {
				aria[a.name.slice(5)] = a.value;
			} else if (a.name !== 'class' && a.name !== 'id' && a.name !== 'style' && a.name !== 'role') {
				attrs[a.name] = a.value;
			}
		}

		let text = '';
		for (const child of el.childNodes) {
			if (child.nodeType === 3) text += child.textContent;
		}
		text = text.trim().slice(0, 200);

		const scrollable =
			(el.scrollWidth > el.clientWidth + 1 || el.scrollHeight > el.clientHeight + 1) &&
			['auto','scroll'].some(v => [cs.overflow, cs.overflowX, cs.overflowY].includes(v));

		const declaredW = el.style.width || '';
		const declaredH = el.style.height || '';

		records.push({
			tag: tag,
			id: el.id || '',
			classes: Array.from(el.classList),
			role: el.getAttribute('role') || '',
			ariaLabel: el.getAttribute('aria-label') || '',
			aria: aria,
			attrs: attrs,
			text: text,
			x: rect.x + window.scrollX,
			y: rect.y + window.scrollY,
			w: rect.width,
			h: rect.height,
			style: {
				display: cs.display,
				position: cs.position,
				overflow: cs.overflow,
				overflowX: cs.overflowX,
				overflowY: cs.overflowY,
				width: cs.width,
				height: cs.height,
				fontSize: cs.fontSize,
				visibility: cs.visibility,
				opacity: cs.opacity
			},
			interactive: interactiveTags.has(tag) || el.onclick != null || el.getAttribute('tabindex') !== null,
			scrollable: scrollable,
			fixedWidth: declaredW.endsWith('px'),
			fixedHeight: declaredH.endsWith('px'),
			scrollWidth: el.scrollWidth,
			scrollHeight: el.scrollHeight,
			clientWidth: el.clientWidth,
			clientHeight: el.clientHeight
		});
	}

	return JSON.stringify(records);
}`
